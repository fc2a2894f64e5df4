package carriers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

func newTestFetcher(maxRetries int) *HTTPFetcher {
	return NewHTTPFetcher("kdexp", "test-agent", 5*time.Second, maxRetries)
}

func TestHTTPFetcher_Fetch_PostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("Expected User-Agent 'test-agent', got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("Expected form content type, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "invoice_no=123&kind_type=" {
			t.Errorf("Unexpected body %q", body)
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := newTestFetcher(0).Fetch(context.Background(), server.URL, RequestOptions{
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:    "invoice_no=123&kind_type=",
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if resp.Text() != "ok" {
		t.Errorf("Text() = %q, want %q", resp.Text(), "ok")
	}
}

func TestHTTPFetcher_Fetch_DecodesEUCKR(t *testing.T) {
	const page = `<html><body><div class="title">집하완료</div></body></html>`

	encoded, _, err := transform.String(korean.EUCKR.NewEncoder(), page)
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		w.Write([]byte(encoded))
	}))
	defer server.Close()

	resp, err := newTestFetcher(0).Fetch(context.Background(), server.URL, RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if resp.Text() != page {
		t.Errorf("Text() = %q, want UTF-8 round trip of fixture", resp.Text())
	}
}

func TestHTTPFetcher_Fetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	resp, err := newTestFetcher(2).Fetch(context.Background(), server.URL, RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if resp.Text() != "recovered" {
		t.Errorf("Text() = %q, want %q", resp.Text(), "recovered")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("Expected 2 attempts, got %d", got)
	}
}

func TestHTTPFetcher_Fetch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestFetcher(2).Fetch(context.Background(), server.URL, RequestOptions{})
	if err == nil {
		t.Fatal("Fetch() error = nil, want rate limit error")
	}
	carrierErr, ok := err.(*CarrierError)
	if !ok || !carrierErr.RateLimit {
		t.Errorf("Fetch() error = %v, want CarrierError with RateLimit", err)
	}
}

func TestHTTPFetcher_Fetch_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher(3).Fetch(context.Background(), server.URL, RequestOptions{})
	if err == nil {
		t.Fatal("Fetch() error = nil, want HTTP error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected a single attempt for a 4xx response, got %d", got)
	}
}
