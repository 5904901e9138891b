// Package delivery is the publish/consume contract between pipeline
// stages. A handler error or panic negatively acknowledges the envelope
// into the dead-letter channel; it is never requeued on its source.
// While a handler runs, the coordinator keeps its delivery claimed with
// periodic heartbeats.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/backoff"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
)

var (
	ErrDecode = errors.New("decode envelope payload")
	ErrPanic  = errors.New("handler panicked")
	// ErrInFlight tells the coordinator the envelope's work is still
	// running elsewhere. The envelope stays pending for a later claim.
	ErrInFlight = errors.New("work still in flight")
)

// HandlerFunc processes one envelope. A nil return acknowledges it.
type HandlerFunc func(ctx context.Context, env broker.Envelope) error

// Coordinator publishes envelopes and drives consumer loops over a broker.
type Coordinator struct {
	broker    broker.Broker
	backoff   backoff.Strategy
	heartbeat time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithHeartbeat sets how often an in-flight delivery is touched. A zero
// value disables heartbeats.
func WithHeartbeat(d time.Duration) Option {
	return func(c *Coordinator) { c.heartbeat = d }
}

// New creates a Coordinator. A nil strategy uses backoff.Default.
func New(b broker.Broker, strategy backoff.Strategy, logger *slog.Logger, opts ...Option) *Coordinator {
	if strategy == nil {
		strategy = backoff.Default()
	}
	c := &Coordinator{
		broker:  b,
		backoff: strategy,
		logger:  logger.With("system", "delivery"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Broker returns the underlying transport.
func (c *Coordinator) Broker() broker.Broker {
	return c.broker
}

// Enqueue JSON-encodes payload into a persistent envelope keyed by key
// and publishes it on channel.
func (c *Coordinator) Enqueue(ctx context.Context, channel, key string, payload any) (broker.Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return broker.Envelope{}, fmt.Errorf("encode payload: %w", err)
	}

	env := broker.Envelope{
		ID:         uuid.NewString(),
		Key:        key,
		Channel:    channel,
		Timestamp:  c.now().UTC(),
		Persistent: true,
		Payload:    data,
	}

	if err := c.broker.Publish(ctx, env); err != nil {
		return broker.Envelope{}, fmt.Errorf("publish to %s: %w", channel, err)
	}

	c.logger.Debug("envelope published", "channel", channel, "envelope_id", env.ID, "key", key)
	return env, nil
}

// Consume fetches from channel and hands each envelope to h until ctx is
// cancelled or the broker closes. Each envelope is settled before the
// next fetch. Fetch errors are logged and retried with backoff.
func (c *Coordinator) Consume(ctx context.Context, channel, consumer string, h HandlerFunc) error {
	logger := c.logger.With("channel", channel, "consumer", consumer)
	logger.Info("consumer started")

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			logger.Info("consumer stopped")
			return err
		}

		d, err := c.broker.Fetch(ctx, channel, consumer)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			if errors.Is(err, broker.ErrClosed) {
				logger.Info("consumer stopped, broker closed")
				return err
			}

			failures++
			delay := c.backoff.Delay(failures)
			logger.Warn("fetch failed", "error", err, "attempt", failures, "retry_in", delay)
			backoff.Sleep(ctx, delay)
			continue
		}
		failures = 0

		if d == nil {
			continue
		}
		c.handle(ctx, d, h, logger)
	}
}

func (c *Coordinator) handle(ctx context.Context, d *broker.Delivery, h HandlerFunc, logger *slog.Logger) {
	logger = logger.With("envelope_id", d.Envelope.ID, "key", d.Envelope.Key)
	settle := context.WithoutCancel(ctx)

	if d.Err != nil {
		c.nack(settle, d, fmt.Errorf("%w: %w", ErrDecode, d.Err), logger)
		return
	}

	stop := c.keepAlive(settle, d, logger)
	err := invoke(ctx, h, d.Envelope)
	stop()

	switch {
	case err == nil:
		if err := c.broker.Ack(settle, d); err != nil {
			logger.Error("ack failed", "error", err)
		}
	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		// Left pending so another consumer claims it after restart.
		logger.Warn("handler interrupted by shutdown")
	case errors.Is(err, ErrInFlight):
		logger.Info("envelope left pending", "reason", err)
	default:
		c.nack(settle, d, err, logger)
	}
}

func (c *Coordinator) nack(ctx context.Context, d *broker.Delivery, cause error, logger *slog.Logger) {
	logger.Error("envelope rejected", "error", cause)
	if err := c.broker.Nack(ctx, d, cause.Error()); err != nil {
		logger.Error("nack failed", "error", err)
	}
}

// keepAlive touches d every heartbeat until the returned stop is called.
func (c *Coordinator) keepAlive(ctx context.Context, d *broker.Delivery, logger *slog.Logger) (stop func()) {
	if c.heartbeat <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		t := time.NewTicker(c.heartbeat)
		defer t.Stop()

		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := c.broker.Touch(ctx, d); err != nil {
					logger.Warn("heartbeat failed", "error", err)
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

func invoke(ctx context.Context, h HandlerFunc, env broker.Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return h(ctx, env)
}

// DeadLetters returns up to limit dead letters, newest first.
func (c *Coordinator) DeadLetters(ctx context.Context, limit int) ([]broker.DeadLetter, error) {
	return c.broker.DeadLetters(ctx, limit)
}

// Decode unmarshals the envelope payload into T.
func Decode[T any](env broker.Envelope) (T, error) {
	var v T
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}
