package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetchManualReturnsMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cases/case-1/manual" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"case_id": "case-1", "manual_markdown": "# Manual"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	text, err := c.FetchManual(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("FetchManual: %v", err)
	}
	if text != "# Manual" {
		t.Fatalf("manual = %q", text)
	}
}

func TestFetchManualRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"case_id": "case-1", "manual_markdown": "recovered"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	text, err := c.FetchManual(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("FetchManual: %v", err)
	}
	if text != "recovered" {
		t.Fatalf("manual = %q", text)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestFetchManualGivesUpAfterBoundedAttempts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	if _, err := c.FetchManual(context.Background(), "case-1"); err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != fetchAttempts {
		t.Fatalf("expected %d attempts, got %d", fetchAttempts, hits.Load())
	}
}

func TestFetchManualUnconfigured(t *testing.T) {
	c := NewClient("", nil)
	if _, err := c.FetchManual(context.Background(), "case-1"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestFetchManualFollowsDocumentURL(t *testing.T) {
	var docsSrv *httptest.Server
	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("rendered manual text"))
	}))
	defer pageSrv.Close()

	docsSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"case_id": "case-1", "document_url": "` + pageSrv.URL + `"}`))
	}))
	defer docsSrv.Close()

	c := NewClient(docsSrv.URL, nil)
	text, err := c.FetchManual(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("FetchManual: %v", err)
	}
	if text != "rendered manual text" {
		t.Fatalf("manual = %q", text)
	}
}
