package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/handlers"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Verifier checks a raw bearer token and returns its subject.
type Verifier func(ctx context.Context, raw string) (string, error)

type subjectKey struct{}

// Subject returns the authenticated subject stored by Auth, or "".
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// OIDCVerifier discovers the issuer's keys and returns a Verifier for its
// ID tokens. An empty audience skips the client id check.
func OIDCVerifier(ctx context.Context, cfg *AuthConfig) (Verifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc issuer %s: %w", cfg.Issuer, err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID:          cfg.Audience,
		SkipClientIDCheck: cfg.Audience == "",
	})

	return func(ctx context.Context, raw string) (string, error) {
		token, err := verifier.Verify(ctx, raw)
		if err != nil {
			return "", err
		}
		return token.Subject, nil
	}, nil
}

// Auth returns middleware that rejects requests without a bearer token
// accepted by verify.
func Auth(verify Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrMissingToken)
				return
			}

			subject, err := verify(r.Context(), strings.TrimSpace(raw))
			if err != nil {
				logger.Warn("token rejected", "error", err)
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
