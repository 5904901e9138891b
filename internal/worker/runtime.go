package worker

import (
	"fmt"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/automation"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/classifier"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/config"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/delivery"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/extractor"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/infrastructure"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/jobs"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/notify"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/pipeline"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
)

// NewStages assembles the ingest, execute and notify stages from cfg.
func NewStages(cfg *config.Config, infra *infrastructure.Infrastructure) ([]Stage, error) {
	logger := infra.Logger.With("module", "worker")
	js := jobs.New(infra.Database.Connection(), logger, cfg.API.Pagination)

	registry, err := automation.Registry(cfg.Automation.PortalURL)
	if err != nil {
		return nil, fmt.Errorf("automation registry: %w", err)
	}
	plans, err := automation.Plans()
	if err != nil {
		return nil, fmt.Errorf("automation plans: %w", err)
	}
	engine := workflow.NewEngine(
		registry,
		plans,
		automation.NewSessionFactory(&cfg.Automation, logger),
		cfg.Workflow,
		logger,
	)

	coord := infra.Delivery

	ingestor := pipeline.NewIngestor(js, classifier.New(), extractor.New(), coord, logger)
	executor := pipeline.NewExecutor(js, engine, infra.Storage, coord, cfg.Pipeline, logger)
	dispatcher := pipeline.NewDispatcher(js, infra.Storage, notify.New(&cfg.Notify, logger), coord, cfg.Pipeline, logger)

	return []Stage{
		{Name: StageIngest, Channel: delivery.ChannelIngestion, Handler: ingestor.Handle, Slots: 1},
		{Name: StageExecute, Channel: delivery.ChannelExecution, Handler: executor.Handle, Slots: cfg.Pipeline.Slots},
		{Name: StageNotify, Channel: delivery.ChannelNotifications, Handler: dispatcher.Handle, Slots: 1},
	}, nil
}
