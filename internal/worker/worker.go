// Package worker runs the pipeline stages as broker consumers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/delivery"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
)

// Stage names.
const (
	StageIngest  = "ingest"
	StageExecute = "execute"
	StageNotify  = "notify"
)

var ErrUnknownStage = errors.New("unknown stage")

// Stages returns every stage name in pipeline order.
func Stages() []string {
	return []string{StageIngest, StageExecute, StageNotify}
}

// Stage binds a handler to the channel it consumes.
type Stage struct {
	Name    string
	Channel string
	Handler delivery.HandlerFunc
	// Slots is how many deliveries of this stage run at once.
	Slots int
}

// Worker consumes every configured stage until its context ends.
type Worker struct {
	coord    *delivery.Coordinator
	consumer string
	stages   []Stage
	logger   *slog.Logger
}

// New creates a Worker. consumer prefixes the broker consumer names so
// several processes can share a consumer group.
func New(coord *delivery.Coordinator, consumer string, logger *slog.Logger, stages ...Stage) *Worker {
	return &Worker{
		coord:    coord,
		consumer: consumer,
		stages:   stages,
		logger:   logger.With("system", "worker"),
	}
}

// Run starts Slots consumers per stage and blocks until ctx is done or a
// consumer fails. A clean shutdown returns nil.
func (w *Worker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range w.stages {
		slots := max(s.Slots, 1)
		w.logger.Info("stage starting", "stage", s.Name, "channel", s.Channel, "slots", slots)

		for i := range slots {
			name := fmt.Sprintf("%s-%s-%d", w.consumer, s.Name, i)
			g.Go(func() error {
				if err := w.coord.Consume(gctx, s.Channel, name, s.Handler); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				return nil
			})
		}
	}

	err := g.Wait()
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, broker.ErrClosed)) {
		return nil
	}
	return err
}

// Select returns the stages named by names, all of them when names is empty.
func Select(stages []Stage, names ...string) ([]Stage, error) {
	if len(names) == 0 {
		return stages, nil
	}

	var out []Stage
	for _, n := range names {
		i := slices.IndexFunc(stages, func(s Stage) bool { return s.Name == n })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStage, n)
		}
		out = append(out, stages[i])
	}
	return out, nil
}
