package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/handlers"
)

// Recover returns middleware that turns a handler panic into a 500 response
// and logs the stack.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.Error("handler panicked",
						"uri", r.URL.RequestURI(),
						"panic", v,
						"stack", string(debug.Stack()),
					)
					handlers.RespondJSON(w, http.StatusInternalServerError,
						map[string]string{"error": "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
