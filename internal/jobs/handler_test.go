package jobs_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/jobs"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/pagination"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/routes"
)

type mockSystem struct {
	jobs.System

	listFn          func(ctx context.Context, w pagination.Window, f jobs.Filters) (*pagination.Result[jobs.Job], error)
	findFn          func(ctx context.Context, id uuid.UUID) (*jobs.Job, error)
	requestCancelFn func(ctx context.Context, id uuid.UUID) (*jobs.Job, error)
}

func (m *mockSystem) List(ctx context.Context, w pagination.Window, f jobs.Filters) (*pagination.Result[jobs.Job], error) {
	return m.listFn(ctx, w, f)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*jobs.Job, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) RequestCancel(ctx context.Context, id uuid.UUID) (*jobs.Job, error) {
	return m.requestCancelFn(ctx, id)
}

var sampleID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

func setupMux(sys jobs.System) *http.ServeMux {
	h := jobs.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultLimit: 25, MaxLimit: 100},
	)
	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

func TestHandlerListPassesFilters(t *testing.T) {
	var gotWindow pagination.Window
	var gotFilters jobs.Filters

	sys := &mockSystem{
		listFn: func(_ context.Context, w pagination.Window, f jobs.Filters) (*pagination.Result[jobs.Job], error) {
			gotWindow, gotFilters = w, f
			r := pagination.NewResult([]jobs.Job{{ID: sampleID, Status: jobs.StatusFailed}}, 1, w)
			return &r, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, httptest.NewRequest("GET", "/jobs?status=failed&limit=500&offset=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if gotWindow.Limit != 100 || gotWindow.Offset != 10 {
		t.Errorf("window = %+v", gotWindow)
	}
	if gotFilters.Status == nil || *gotFilters.Status != jobs.StatusFailed {
		t.Errorf("status filter = %v", gotFilters.Status)
	}

	var body pagination.Result[jobs.Job]
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 1 || len(body.Items) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestHandlerListRejectsUnknownStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	setupMux(&mockSystem{}).ServeHTTP(rec, httptest.NewRequest("GET", "/jobs?status=paused", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerFind(t *testing.T) {
	creds := `{"password":"secret"}`

	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*jobs.Job, error) {
			if id != sampleID {
				return nil, jobs.ErrNotFound
			}
			return &jobs.Job{ID: id, Status: jobs.StatusPending, Credentials: &creds}, nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/jobs/" + sampleID.String(), http.StatusOK},
		{"missing", "/jobs/" + uuid.NewString(), http.StatusNotFound},
		{"bad id", "/jobs/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				var raw map[string]any
				json.Unmarshal(rec.Body.Bytes(), &raw)
				if _, ok := raw["credentials"]; ok {
					t.Error("credentials exposed in API response")
				}
			}
		})
	}
}

func TestHandlerCancel(t *testing.T) {
	sys := &mockSystem{
		requestCancelFn: func(_ context.Context, id uuid.UUID) (*jobs.Job, error) {
			if id == sampleID {
				return nil, jobs.ErrTerminal
			}
			return &jobs.Job{ID: id, Status: jobs.StatusProcessing}, nil
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/jobs/"+uuid.NewString()+"/cancel", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("cancel running: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/jobs/"+sampleID.String()+"/cancel", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("cancel terminal: status = %d, want 409", rec.Code)
	}
}

func TestHandlerMasksPasswords(t *testing.T) {
	creds := `{"company_login":{"company_name":"Akrati","password":"Pr1nt!2026"}}`
	job := jobs.Job{
		ID:          sampleID,
		Status:      jobs.StatusPending,
		Body:        "Company Login\nCompany Name: Akrati\nPassword: Pr1nt!2026",
		Credentials: &creds,
	}

	sys := &mockSystem{
		listFn: func(_ context.Context, w pagination.Window, _ jobs.Filters) (*pagination.Result[jobs.Job], error) {
			r := pagination.NewResult([]jobs.Job{job}, 1, w)
			return &r, nil
		},
		findFn: func(context.Context, uuid.UUID) (*jobs.Job, error) {
			j := job
			return &j, nil
		},
		requestCancelFn: func(context.Context, uuid.UUID) (*jobs.Job, error) {
			j := job
			return &j, nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"list", "GET", "/jobs"},
		{"find", "GET", "/jobs/" + sampleID.String()},
		{"cancel", "POST", "/jobs/" + sampleID.String() + "/cancel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			body := rec.Body.String()
			if strings.Contains(body, "Pr1nt!2026") {
				t.Errorf("password exposed: %s", body)
			}
			if !strings.Contains(body, "Company Name: Akrati") {
				t.Errorf("body missing: %s", body)
			}
		})
	}
}
