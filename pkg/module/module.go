// Package module mounts independently middlewared handlers under path
// prefixes of one server.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/middleware"
)

// Module is an HTTP handler that strips its prefix and delegates to an inner router
// with its own middleware stack.
type Module struct {
	prefix string
	router http.Handler
	chain  middleware.Chain
}

// New creates a Module under prefix, which may span several segments
// (e.g. "/api/v1"). Panics on an invalid prefix.
func New(prefix string, router http.Handler) *Module {
	if err := ValidatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix: prefix,
		router: router,
	}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's stack.
func (m *Module) Use(mw middleware.Func) {
	m.chain = append(m.chain, mw)
}

// Handler returns the inner router wrapped with the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.chain.Then(m.router)
}

// Matches reports whether path is the prefix itself or lies below it.
func (m *Module) Matches(path string) bool {
	return path == m.prefix || strings.HasPrefix(path, m.prefix+"/")
}

// ServeHTTP strips the prefix and dispatches to the inner router.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	inner := req.Clone(req.Context())
	inner.URL = new(url.URL)
	*inner.URL = *req.URL
	inner.URL.Path = path
	inner.URL.RawPath = ""

	m.Handler().ServeHTTP(w, inner)
}

// ValidatePrefix requires a rooted, clean path without a trailing slash.
func ValidatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case prefix == "/" || strings.HasSuffix(prefix, "/"):
		return fmt.Errorf("module prefix must not end with /: %s", prefix)
	case strings.Contains(prefix, "//") || strings.Contains(prefix, ".."):
		return fmt.Errorf("module prefix must be a clean path: %s", prefix)
	}
	return nil
}
