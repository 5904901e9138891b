package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/module"
)

func echo(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Module", name)
		w.Write([]byte(r.URL.Path))
	})
}

func TestRouterLongestPrefix(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echo("api")))
	router.Mount(module.New("/api/v2", echo("v2")))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Module", "native")
	})

	tests := []struct {
		path, module, inner string
	}{
		{"/api/jobs", "api", "/jobs"},
		{"/api/v2/jobs/", "v2", "/jobs"},
		{"/api", "api", "/"},
		{"/apix", "", ""},
		{"/healthz", "native", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := rec.Header().Get("X-Module"); got != tt.module {
				t.Errorf("module = %q, want %q", got, tt.module)
			}
			if tt.inner != "" && rec.Body.String() != tt.inner {
				t.Errorf("inner path = %q, want %q", rec.Body.String(), tt.inner)
			}
		})
	}
}

func TestModuleMiddleware(t *testing.T) {
	m := module.New("/api", echo("api"))
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Wrapped", "yes")
			next.ServeHTTP(w, r)
		})
	})

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	if rec.Header().Get("X-Wrapped") != "yes" {
		t.Error("middleware not applied")
	}
}

func TestValidatePrefix(t *testing.T) {
	for _, bad := range []string{"", "api", "/", "/api/", "/api//v1", "/api/../x"} {
		if err := module.ValidatePrefix(bad); err == nil {
			t.Errorf("prefix %q accepted", bad)
		}
	}
	if err := module.ValidatePrefix("/api/v1"); err != nil {
		t.Errorf("valid prefix rejected: %v", err)
	}
}
