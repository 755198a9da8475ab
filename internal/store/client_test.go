package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPutDocument_Success(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	err := c.PutDocument(context.Background(), "doc-1", Document{Markdown: "# 报告"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/docs/doc-1" {
		t.Errorf("expected path /docs/doc-1, got %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
}

func TestPutDocument_RetryableStatuses(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		c := NewClient(srv.URL, "k")
		err := c.PutDocument(context.Background(), "d", Document{})
		srv.Close()
		var retryErr *RetryableError
		if !errors.As(err, &retryErr) {
			t.Errorf("status %d: expected RetryableError, got %v", code, err)
			continue
		}
		if retryErr.StatusCode != code {
			t.Errorf("expected status %d in error, got %d", code, retryErr.StatusCode)
		}
	}
}

func TestPutDocument_ClientErrorNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	err := c.PutDocument(context.Background(), "d", Document{})
	if err == nil {
		t.Fatal("expected error")
	}
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		t.Errorf("400 should not be retryable: %v", err)
	}
}

func TestGetDocument_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"doc_id":"d1","markdown":"# 标题","content_hash":"abc"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	doc, err := c.GetDocument(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc == nil {
		t.Fatal("expected document")
	}
	if doc.Markdown != "# 标题" {
		t.Errorf("unexpected markdown %q", doc.Markdown)
	}
	if doc.ContentHash != "abc" {
		t.Errorf("unexpected content hash %q", doc.ContentHash)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	doc, err := c.GetDocument(context.Background(), "missing")
	if err != nil {
		t.Fatalf("404 should not be an error: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil document, got %+v", doc)
	}
}

func TestDeleteDocument(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	if err := c.DeleteDocument(context.Background(), "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("expected DELETE, got %s", gotMethod)
	}
}

func TestListDocuments(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents":[{"doc_id":"a","title":"报告A"},{"doc_id":"b"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	docs, err := c.ListDocuments(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "limit=50" {
		t.Errorf("expected limit query, got %q", gotQuery)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "a" || docs[0].Title != "报告A" {
		t.Errorf("unexpected first entry %+v", docs[0])
	}
}

func TestDocURL_EscapesID(t *testing.T) {
	c := NewClient("http://store", "k")
	if got := c.docURL("a/b c"); got != "http://store/docs/a%2Fb%20c" {
		t.Errorf("unexpected url %q", got)
	}
}
