package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSendsKeyAndDecodes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "secret" || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing credentials: %v", r.Header)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, APIKey: "secret", Timeout: 5 * time.Second})
	out := struct {
		OK bool `json:"ok"`
	}{}
	if err := c.RPC(context.Background(), "ping", map[string]any{}, &out); err != nil {
		t.Fatalf("rpc: %v", err)
	}
	if !out.OK {
		t.Fatalf("expected decoded body")
	}
}

func TestClientStatusError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
	err := c.Insert(context.Background(), "/sessions", map[string]any{"id": "s1"}, &[]any{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusConflict || statusErr.Method != http.MethodPost {
		t.Fatalf("expected conflict status error, got %v", err)
	}
}

func TestFilters(t *testing.T) {
	t.Parallel()
	if Eq("u1") != "eq.u1" || Gte("a") != "gte.a" || Lte("b") != "lte.b" {
		t.Fatalf("unexpected filter encoding")
	}
	if got := Between("date", "2026-01-01", "2026-01-31"); got != "(date.gte.2026-01-01,date.lte.2026-01-31)" {
		t.Fatalf("unexpected range filter %s", got)
	}
}
