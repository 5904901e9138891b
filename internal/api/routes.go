package api

import (
	"net/http"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Jobs.Handler().Routes(),
		domain.Messages.Routes(),
		domain.DeadLetters.Routes(),
		domain.Artifacts.Routes(),
	)
}
