package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestCORSPreflightAllowsPatch(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("preflight must not reach the handler")
	})
	handler := corsMiddleware(next, []string{"https://console.example.com/"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/alarms/7", nil)
	req.Header.Set("Origin", "https://console.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://console.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if methods := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, http.MethodPatch) {
		t.Fatalf("PATCH missing from %q", methods)
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	handler := corsMiddleware(next, []string{"https://console.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alarms", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected the request to pass through")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
		if _, ok := w.(http.Flusher); !ok {
			t.Fatalf("expected a flusher")
		}
		w.WriteHeader(http.StatusAccepted)
	})
	handler := loggingMiddleware(next, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("request id not propagated: %q vs %q", seen, rec.Header().Get("X-Request-ID"))
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "req-1" || rec.Header().Get("X-Request-ID") != "req-1" {
		t.Fatalf("expected caller request id to be kept, got %q", seen)
	}
}
