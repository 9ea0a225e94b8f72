package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type fakeRefresher struct {
	calls atomic.Int64
	token *atomic.Value
}

func (f *fakeRefresher) RefreshNow(context.Context) error {
	f.calls.Add(1)
	f.token.Store("tok-renewed")
	return nil
}

func TestTransportInjectsBearer(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := &http.Client{
		Transport: NewTransport(func() string { return "tok-1" }, nil),
	}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if seen != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", seen)
	}
}

func TestTransportRenewsAndRetriesOnUnauthorized(t *testing.T) {
	var token atomic.Value
	token.Store("tok-expired")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-renewed" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	refresher := &fakeRefresher{token: &token}
	client := &http.Client{
		Transport: NewTransport(func() string { return token.Load().(string) }, refresher),
	}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected retry to succeed, got %d", resp.StatusCode)
	}
	if got := refresher.calls.Load(); got != 1 {
		t.Fatalf("expected one renewal, got %d", got)
	}
}

func TestTransportWithoutRefresherReturnsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := &http.Client{
		Transport: NewTransport(func() string { return "tok-1" }, nil),
	}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected passthrough 401, got %d", resp.StatusCode)
	}
}
