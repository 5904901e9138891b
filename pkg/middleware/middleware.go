// Package middleware holds the HTTP middleware shared by courier modules.
package middleware

import "net/http"

// Func wraps a handler.
type Func = func(http.Handler) http.Handler

// Chain is an ordered middleware stack. The first entry runs outermost.
type Chain []Func

// Then wraps handler with every middleware in c.
func (c Chain) Then(handler http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		handler = c[i](handler)
	}
	return handler
}
