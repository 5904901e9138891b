package routes

import "net/http"

// Route binds an HTTP method and a pattern relative to its group.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

func (r Route) key(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}

// Group collects routes under a shared prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups to mux as "METHOD prefix+pattern".
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.key(prefix), r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}
