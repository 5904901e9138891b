package module

import (
	"net/http"
	"slices"
	"strings"
)

// Router dispatches requests to the mounted module with the longest
// matching prefix, falling back to a native ServeMux.
type Router struct {
	modules []*Module
	native  *http.ServeMux
}

func NewRouter() *Router {
	return &Router{native: http.NewServeMux()}
}

// HandleNative registers a handler on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount registers m. A module with the same prefix is replaced.
func (r *Router) Mount(m *Module) {
	r.modules = slices.DeleteFunc(r.modules, func(x *Module) bool { return x.prefix == m.prefix })
	r.modules = append(r.modules, m)
	slices.SortFunc(r.modules, func(a, b *Module) int { return len(b.prefix) - len(a.prefix) })
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	for _, m := range r.modules {
		if m.Matches(req.URL.Path) {
			m.ServeHTTP(w, req)
			return
		}
	}

	r.native.ServeHTTP(w, req)
}
