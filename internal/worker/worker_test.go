package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/delivery"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/worker"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/backoff"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunConsumesUntilCancelled(t *testing.T) {
	m := broker.NewMemory(5 * time.Millisecond)
	if err := m.Declare(context.Background(), delivery.Channels()...); err != nil {
		t.Fatalf("declare: %v", err)
	}
	coord := delivery.New(m, backoff.Constant(time.Millisecond), discard())

	var handled atomic.Int32
	done := make(chan struct{})
	stage := worker.Stage{
		Name:    worker.StageExecute,
		Channel: delivery.ChannelExecution,
		Slots:   2,
		Handler: func(context.Context, broker.Envelope) error {
			if handled.Add(1) == 3 {
				close(done)
			}
			return nil
		},
	}

	for i := range 3 {
		if _, err := coord.Enqueue(context.Background(), delivery.ChannelExecution, string(rune('a'+i)), map[string]int{"n": i}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- worker.New(coord, "test", discard(), stage).Run(ctx) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("envelopes not handled")
	}
	cancel()

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("run = %v, want nil on shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	if m.Pending() != 0 {
		t.Errorf("pending = %d", m.Pending())
	}
}

func TestSelect(t *testing.T) {
	stages := []worker.Stage{
		{Name: worker.StageIngest},
		{Name: worker.StageExecute},
		{Name: worker.StageNotify},
	}

	all, err := worker.Select(stages)
	if err != nil || len(all) != 3 {
		t.Errorf("select all = %d %v", len(all), err)
	}

	some, err := worker.Select(stages, worker.StageNotify, worker.StageIngest)
	if err != nil || len(some) != 2 || some[0].Name != worker.StageNotify {
		t.Errorf("select = %+v %v", some, err)
	}

	if _, err := worker.Select(stages, "archive"); !errors.Is(err, worker.ErrUnknownStage) {
		t.Errorf("err = %v, want ErrUnknownStage", err)
	}
}
