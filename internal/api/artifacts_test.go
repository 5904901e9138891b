package api_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/api"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/lifecycle"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/routes"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/storage"
)

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type mockStore struct {
	storage.System
	blobs map[string][]byte
}

func (m *mockStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func newMux() *http.ServeMux {
	store := &mockStore{blobs: map[string][]byte{"jobs/42/screenshot.png": png}}
	h := api.NewArtifactHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

func TestArtifactDownload(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artifacts/jobs/42/screenshot.png", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %s", ct)
	}
	if rec.Body.String() != string(png) {
		t.Error("body mismatch")
	}
}

func TestArtifactDownloadErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing", "/artifacts/jobs/43/screenshot.png", http.StatusNotFound},
		{"traversal", "/artifacts/jobs/42..screenshot.png", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
