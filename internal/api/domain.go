package api

import (
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/delivery"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/jobs"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/pipeline"
)

// Domain holds the handlers that comprise the API.
type Domain struct {
	Jobs        jobs.System
	Messages    *pipeline.Handler
	DeadLetters *delivery.Handler
	Artifacts   *ArtifactHandler
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Jobs: jobs.New(
			runtime.Database.Connection(),
			runtime.Logger,
			runtime.Pagination,
		),
		Messages: pipeline.NewHandler(
			runtime.Delivery,
			runtime.MaxBodySize,
			runtime.Logger,
		),
		DeadLetters: delivery.NewHandler(
			runtime.Delivery,
			runtime.Logger,
			runtime.Pagination,
		),
		Artifacts: NewArtifactHandler(runtime.Storage, runtime.Logger),
	}
}
