package monobank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStatement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "tok" {
			t.Errorf("X-Token = %q, want %q", r.Header.Get("X-Token"), "tok")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"abc","time":1700000000,"description":"ATB Market","mcc":5411,"amount":-12550,"balance":100000},
			{"id":"def","time":1700003600,"description":"Salary","mcc":0,"amount":5000000,"balance":5100000}
		]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	items, err := client.Statement(context.Background(), "tok", "0", time.Unix(1699990000, 0), time.Unix(1700010000, 0))
	if err != nil {
		t.Fatalf("Statement() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Statement() returned %d items, want 2", len(items))
	}
	if items[0].ID != "abc" || items[0].MCC != 5411 {
		t.Errorf("item[0] = %+v", items[0])
	}
	if got := items[0].AbsAmount(); got != 125.50 {
		t.Errorf("AbsAmount() = %v, want 125.50", got)
	}
	if items[0].Amount >= 0 {
		t.Errorf("amount sign lost: %d", items[0].Amount)
	}
}

func TestStatementRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Statement(context.Background(), "tok", "0", time.Now().Add(-time.Hour), time.Now())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Statement() error = %v, want ErrRateLimited", err)
	}
}

func TestStatementServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errorDescription":"Unknown 'X-Token'"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Statement(context.Background(), "bad", "0", time.Now().Add(-time.Hour), time.Now())
	if err == nil || errors.Is(err, ErrRateLimited) {
		t.Fatalf("Statement() error = %v, want non-rate-limit failure", err)
	}
}
