package main

import (
	"context"
	"net/http"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/api"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/config"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/infrastructure"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/handlers"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() || !infra.Database.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		if err := infra.Broker.Ping(r.Context()); err != nil {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "broker unavailable"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}
