package restclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCallRetriesExhaustAttempts(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewWithDoer(http.DefaultClient, server.URL, 2, time.Millisecond, zap.NewNop())

	err := client.Get(context.Background(), "/price-adjustments/recent", nil, nil)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", got)
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "boom" {
		t.Fatalf("expected platform message, got %q", apiErr.Message)
	}
}

func TestCallSucceedsAfterTransientFailure(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 2 {
			http.Error(w, `{"message":"try again"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewWithDoer(http.DefaultClient, server.URL, 2, time.Millisecond, zap.NewNop())

	var out struct {
		OK bool `json:"ok"`
	}
	if err := client.Get(context.Background(), "/healthz", nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK {
		t.Fatal("expected decoded response")
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestCallAppendsOnlyPresentQueryParams(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewWithDoer(http.DefaultClient, server.URL, 0, time.Millisecond, zap.NewNop())

	query := url.Values{}
	query.Set("limit", "10")
	var out []any
	if err := client.Get(context.Background(), "/price-adjustments/date-range", query, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery.Get("limit") != "10" {
		t.Fatalf("expected limit=10, got %q", gotQuery.Get("limit"))
	}
	if _, present := gotQuery["product_id"]; present {
		t.Fatal("absent filters must not be appended")
	}
}

func TestCallCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"down"}`, http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewWithDoer(http.DefaultClient, server.URL, 5, time.Second, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.Get(ctx, "/inventory/counts", nil, nil)
	if err != context.DeadlineExceeded {
		t.Fatalf("expected context deadline, got %v", err)
	}
}
