// Package docs talks to the document service that owns case manuals.
// The graph subsystem never stores manuals itself; it asks this
// collaborator for the markdown on demand.
package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/repolens/backend/internal/util"
	"github.com/repolens/backend/pkg/loader"
)

const fetchAttempts = 3

// Client fetches case manuals over HTTP. It implements the workbench's
// document source port.
type Client struct {
	baseURL string
	http    *http.Client
	loader  *loader.DocumentLoader
}

// NewClient creates a document service client. An empty baseURL yields a
// client whose fetches always fail, which downgrades the workbench to
// its seed-text fallback.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		loader:  loader.NewDocumentLoader(httpClient),
	}
}

type manualResponse struct {
	CaseID         string `json:"case_id"`
	ManualMarkdown string `json:"manual_markdown"`
	DocumentURL    string `json:"document_url"`
}

// FetchManual returns the manual text for a case. Transient failures are
// retried a bounded number of times. A manual that only exists as a
// rendered HTML page is fetched and reduced to plain text.
func (c *Client) FetchManual(ctx context.Context, caseID string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("document service not configured")
	}

	manual, err := util.RetryWithContext(ctx, fetchAttempts, func(ctx context.Context) (manualResponse, error) {
		return c.fetchOnce(ctx, caseID)
	})
	if err != nil {
		return "", err
	}

	if manual.ManualMarkdown != "" {
		return manual.ManualMarkdown, nil
	}
	if manual.DocumentURL != "" {
		return c.loader.FetchText(ctx, manual.DocumentURL)
	}
	return "", nil
}

func (c *Client) fetchOnce(ctx context.Context, caseID string) (manualResponse, error) {
	url := fmt.Sprintf("%s/cases/%s/manual", c.baseURL, caseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return manualResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return manualResponse{}, fmt.Errorf("failed to fetch manual: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return manualResponse{}, fmt.Errorf("document service returned %d for case %s", resp.StatusCode, caseID)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return manualResponse{}, fmt.Errorf("failed to read manual: %w", err)
	}

	var manual manualResponse
	if err := json.Unmarshal(body, &manual); err != nil {
		return manualResponse{}, fmt.Errorf("failed to decode manual: %w", err)
	}
	return manual, nil
}
