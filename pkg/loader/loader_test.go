package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestFetchTextPlainPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown")
		w.Write([]byte("# Title\n\nAuthService calls UserRepository."))
	}))
	defer srv.Close()

	l := NewDocumentLoader(srv.Client())
	text, err := l.FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText: %v", err)
	}
	if !strings.Contains(text, "# Title") {
		t.Fatalf("markdown must pass through unchanged, got %q", text)
	}
}

func TestFetchTextReducesHTML(t *testing.T) {
	page := `<html><head><title>t</title><style>body{color:red}</style></head>
<body><script>var x = "hidden";</script><p>AuthService calls UserRepository.</p></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	l := NewDocumentLoader(srv.Client())
	text, err := l.FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText: %v", err)
	}
	if !strings.Contains(text, "AuthService calls UserRepository.") {
		t.Fatalf("article text missing, got %q", text)
	}
	if strings.Contains(text, "hidden") || strings.Contains(text, "color:red") {
		t.Fatalf("script/style content leaked into %q", text)
	}
}

func TestFetchTextCachesByURL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	l := NewDocumentLoader(srv.Client())
	for i := 0; i < 3; i++ {
		if _, err := l.FetchText(context.Background(), srv.URL); err != nil {
			t.Fatalf("FetchText: %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits.Load())
	}
}

func TestFetchTextErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	l := NewDocumentLoader(srv.Client())
	if _, err := l.FetchText(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestStripTags(t *testing.T) {
	text, err := stripTags(`<div><script>nope()</script><p>one</p><p>two</p></div>`)
	if err != nil {
		t.Fatalf("stripTags: %v", err)
	}
	if text != "one two" {
		t.Fatalf("stripTags = %q, want %q", text, "one two")
	}
}
