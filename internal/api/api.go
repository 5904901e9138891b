// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/config"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/infrastructure"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/middleware"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// When auth is enabled the issuer is discovered before returning.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.Logger(runtime.Logger))

	if cfg.API.Auth.Enabled {
		verify, err := middleware.OIDCVerifier(ctx, &cfg.API.Auth)
		if err != nil {
			return nil, fmt.Errorf("api auth: %w", err)
		}
		m.Use(middleware.Auth(verify, runtime.Logger))
	}

	return m, nil
}
