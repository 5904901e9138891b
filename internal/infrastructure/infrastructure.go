// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies (logging, database, storage, broker) that the
// server and worker share.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/config"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/delivery"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/backoff"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/database"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/lifecycle"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/storage"
)

// Infrastructure holds the core systems required by every process.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Broker    *broker.Redis
	Delivery  *delivery.Coordinator
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	b := broker.NewRedis(&cfg.Broker, logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Broker:    b,
		Delivery:  delivery.New(b, backoff.Default(), logger, delivery.WithHeartbeat(cfg.Broker.HeartbeatDuration())),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Broker.Start(i.Lifecycle, delivery.Channels()...); err != nil {
		return fmt.Errorf("broker start failed: %w", err)
	}
	return nil
}
