// Package loader turns remote documentation sources into plain text the
// extraction pipeline can consume. Markdown and plain text pass through
// unchanged; HTML is reduced to its readable article text.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

const maxDocumentBytes = 8 << 20

// DocumentLoader fetches documentation URLs and caches the extracted
// text. Concurrent fetches of the same URL are collapsed into one request.
type DocumentLoader struct {
	client *http.Client

	cache   map[string]string
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewDocumentLoader creates a loader using the given HTTP client, or
// http.DefaultClient when nil.
func NewDocumentLoader(client *http.Client) *DocumentLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &DocumentLoader{
		client: client,
		cache:  map[string]string{},
	}
}

// FetchText fetches a URL and returns its plain-text content. HTML
// responses are reduced to readable text; everything else is returned
// as is.
func (l *DocumentLoader) FetchText(ctx context.Context, rawURL string) (string, error) {
	l.cacheMu.RLock()
	if cached, ok := l.cache[rawURL]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(rawURL, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
		}

		body := io.LimitReader(resp.Body, maxDocumentBytes)
		var text string
		if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			text, err = HTMLToText(body, rawURL)
		} else {
			var raw []byte
			raw, err = io.ReadAll(body)
			text = string(raw)
		}
		if err != nil {
			return "", err
		}

		l.cacheMu.Lock()
		l.cache[rawURL] = text
		l.cacheMu.Unlock()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// HTMLToText extracts readable text from an HTML document. Readability
// finds the main article; documents it cannot segment (fragments, chrome-
// less pages) fall back to a plain tag strip.
func HTMLToText(r io.Reader, rawURL string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read html: %w", err)
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(raw)), base)
	if err == nil {
		var builder strings.Builder
		if err := article.RenderText(&builder); err == nil && strings.TrimSpace(builder.String()) != "" {
			return builder.String(), nil
		}
	}

	return stripTags(string(raw))
}

// stripTags walks the parsed HTML tree collecting text nodes, skipping
// script and style subtrees.
func stripTags(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
			builder.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(builder.String()), " "), nil
}
