package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/lifecycle"
)

const (
	fieldEnvelope   = "envelope"
	fieldDeadLetter = "dead_letter"
)

var _ Broker = (*Redis)(nil)

// Redis implements Broker on Redis Streams. Each channel is a stream
// "<prefix>:<channel>" read through one consumer group.
type Redis struct {
	client    *redis.Client
	group     string
	prefix    string
	block     time.Duration
	claimIdle time.Duration
	maxLen    int64
	channels  []string
	logger    *slog.Logger
}

// NewRedis builds a client from cfg. Nothing is contacted until Start or a
// broker call.
func NewRedis(cfg *Config, logger *slog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Redis{
		client:    client,
		group:     cfg.Group,
		prefix:    cfg.Prefix,
		block:     cfg.BlockDuration(),
		claimIdle: cfg.ClaimIdleDuration(),
		maxLen:    cfg.MaxLen,
		logger:    logger.With("system", "broker"),
	}
}

// Start declares channels during startup and closes the client at shutdown.
func (r *Redis) Start(lc *lifecycle.Coordinator, channels ...string) error {
	r.logger.Info("starting broker", "group", r.group, "channels", channels)

	lc.OnStartup(func() {
		if err := r.Declare(lc.Context(), channels...); err != nil {
			r.logger.Error("broker declare failed", "error", err)
			return
		}
		r.logger.Info("broker channels declared")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := r.Close(); err != nil {
			r.logger.Error("broker close failed", "error", err)
			return
		}
		r.logger.Info("broker closed")
	})

	return nil
}

func (r *Redis) stream(channel string) string {
	return r.prefix + ":" + channel
}

func (r *Redis) Declare(ctx context.Context, channels ...string) error {
	for _, ch := range append(slices.Clone(channels), DeadLetterChannel) {
		err := r.client.XGroupCreateMkStream(ctx, r.stream(ch), r.group, "0").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("declare channel %s: %w", ch, err)
		}
	}
	return nil
}

func (r *Redis) Publish(ctx context.Context, env Envelope) error {
	if env.Channel == "" {
		return ErrEmptyChannel
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream:     r.stream(env.Channel),
		NoMkStream: true,
		MaxLen:     r.maxLen,
		Approx:     true,
		Values:     map[string]any{fieldEnvelope: data},
	}).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("publish %s: %w", env.Channel, ErrUnknownChannel)
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", env.Channel, err)
	}
	return nil
}

// Fetch first claims entries left pending by a consumer that has been idle
// longer than claim_idle, then reads new entries.
func (r *Redis) Fetch(ctx context.Context, channel, consumer string) (*Delivery, error) {
	stream := r.stream(channel)

	claimed, _, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    r.group,
		Consumer: consumer,
		MinIdle:  r.claimIdle,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("claim %s: %w", channel, err)
	}
	if len(claimed) > 0 {
		r.logger.Warn("claimed stale delivery", "channel", channel, "tag", claimed[0].ID)
		return toDelivery(channel, consumer, claimed[0]), nil
	}

	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    1,
		Block:    r.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch %s: %w", channel, err)
	}

	for _, s := range streams {
		if len(s.Messages) > 0 {
			return toDelivery(channel, consumer, s.Messages[0]), nil
		}
	}
	return nil, nil
}

// Touch re-claims d for its own consumer, which resets the entry's idle
// time without changing ownership.
func (r *Redis) Touch(ctx context.Context, d *Delivery) error {
	ids, err := r.client.XClaimJustID(ctx, &redis.XClaimArgs{
		Stream:   r.stream(d.Channel),
		Group:    r.group,
		Consumer: d.consumer,
		Messages: []string{d.tag},
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("touch %s: %w", d.Channel, err)
	}
	if len(ids) == 0 {
		return ErrUnknownDelivery
	}
	return nil
}

func (r *Redis) Ack(ctx context.Context, d *Delivery) error {
	stream := r.stream(d.Channel)

	pipe := r.client.TxPipeline()
	ack := pipe.XAck(ctx, stream, r.group, d.tag)
	pipe.XDel(ctx, stream, d.tag)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ack %s: %w", d.Channel, err)
	}
	if ack.Val() == 0 {
		return ErrUnknownDelivery
	}
	return nil
}

func (r *Redis) Nack(ctx context.Context, d *Delivery, reason string) error {
	dl := DeadLetter{
		Envelope: d.Envelope,
		Source:   d.Channel,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(dl)
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}

	stream := r.stream(d.Channel)

	pipe := r.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream(DeadLetterChannel),
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{fieldDeadLetter: data},
	})
	pipe.XAck(ctx, stream, r.group, d.tag)
	pipe.XDel(ctx, stream, d.tag)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("nack %s: %w", d.Channel, err)
	}
	return nil
}

func (r *Redis) DeadLetters(ctx context.Context, limit int) ([]DeadLetter, error) {
	msgs, err := r.client.XRevRangeN(ctx, r.stream(DeadLetterChannel), "+", "-", int64(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}

	out := make([]DeadLetter, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values[fieldDeadLetter].(string)
		if !ok {
			continue
		}
		var dl DeadLetter
		if err := json.Unmarshal([]byte(raw), &dl); err != nil {
			r.logger.Warn("skipping malformed dead letter", "tag", m.ID, "error", err)
			continue
		}
		out = append(out, dl)
	}
	return out, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func toDelivery(channel, consumer string, m redis.XMessage) *Delivery {
	d := &Delivery{Channel: channel, tag: m.ID, consumer: consumer}

	raw, ok := m.Values[fieldEnvelope].(string)
	if !ok {
		d.Err = fmt.Errorf("entry %s has no %s field", m.ID, fieldEnvelope)
		d.Envelope.Channel = channel
		return d
	}

	if err := json.Unmarshal([]byte(raw), &d.Envelope); err != nil {
		d.Err = fmt.Errorf("decode envelope %s: %w", m.ID, err)
		d.Envelope = Envelope{Channel: channel}
	}
	return d
}
