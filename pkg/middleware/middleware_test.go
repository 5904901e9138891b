package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/middleware"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	chain := middleware.Chain{tag("first"), tag("second")}

	h := chain.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "first,second,handler" {
		t.Errorf("order = %v", order)
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/jobs?limit=5", nil))

	out := buf.String()
	if !strings.Contains(out, "status=418") || !strings.Contains(out, "uri=\"/api/jobs?limit=5\"") {
		t.Errorf("log line missing fields: %s", out)
	}
}

func TestRecover(t *testing.T) {
	h := middleware.Recover(discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	verify := func(_ context.Context, raw string) (string, error) {
		if raw == "good" {
			return "operator-1", nil
		}
		return "", errors.New("signature mismatch")
	}

	var subject string
	h := middleware.Auth(verify, discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = middleware.Subject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"rejected", "Bearer bad", http.StatusUnauthorized},
		{"accepted", "Bearer good", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if subject != "operator-1" {
		t.Errorf("subject = %q, want operator-1", subject)
	}
}

func TestAuthConfigRequiresIssuer(t *testing.T) {
	cfg := middleware.AuthConfig{Enabled: true}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for enabled auth without issuer")
	}
}
