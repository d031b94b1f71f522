package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clierr "github.com/nvalverde/bridgescout/internal/errors"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGetJSONSuccess(t *testing.T) {
	server := serve(t, http.StatusOK, `{"value":42}`)
	var out struct {
		Value int `json:"value"`
	}
	if _, err := New(5*time.Second).GetJSON(context.Background(), server.URL, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Value != 42 {
		t.Fatalf("value = %d", out.Value)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   clierr.Code
	}{
		{"rate limited", http.StatusTooManyRequests, clierr.CodeRateLimited},
		{"unauthorized", http.StatusUnauthorized, clierr.CodeAuth},
		{"forbidden", http.StatusForbidden, clierr.CodeAuth},
		{"server error", http.StatusInternalServerError, clierr.CodeUnavailable},
		{"bad gateway", http.StatusBadGateway, clierr.CodeUnavailable},
		{"not found", http.StatusNotFound, clierr.CodeUnsupported},
		{"bad request", http.StatusBadRequest, clierr.CodeUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := serve(t, tc.status, `{}`)
			var out map[string]any
			_, err := New(5*time.Second).GetJSON(context.Background(), server.URL, nil, &out)
			cErr, ok := clierr.As(err)
			if !ok {
				t.Fatalf("error = %v, want coded error", err)
			}
			if cErr.Code != tc.want {
				t.Fatalf("code = %d, want %d", cErr.Code, tc.want)
			}
		})
	}
}

func TestEmptyBodyIsUnavailable(t *testing.T) {
	server := serve(t, http.StatusOK, "")
	var out map[string]any
	_, err := New(5*time.Second).GetJSON(context.Background(), server.URL, nil, &out)
	cErr, ok := clierr.As(err)
	if !ok || cErr.Code != clierr.CodeUnavailable {
		t.Fatalf("error = %v, want unavailable", err)
	}
}

func TestMalformedJSONIsUnavailable(t *testing.T) {
	server := serve(t, http.StatusOK, "not json")
	var out map[string]any
	_, err := New(5*time.Second).GetJSON(context.Background(), server.URL, nil, &out)
	cErr, ok := clierr.As(err)
	if !ok || cErr.Code != clierr.CodeUnavailable {
		t.Fatalf("error = %v, want unavailable", err)
	}
}

func TestTimeoutIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	var out map[string]any
	_, err := New(20*time.Millisecond).GetJSON(context.Background(), server.URL, nil, &out)
	cErr, ok := clierr.As(err)
	if !ok || cErr.Code != clierr.CodeUnavailable {
		t.Fatalf("error = %v, want unavailable", err)
	}
}

func TestPostJSONSendsBodyAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %q", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content type = %q", ct)
		}
		if got := r.Header.Get("X-Custom"); got != "yes" {
			t.Fatalf("custom header = %q", got)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	var out map[string]any
	_, err := New(5*time.Second).PostJSON(context.Background(), server.URL, map[string]string{"a": "b"}, map[string]string{"X-Custom": "yes"}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
