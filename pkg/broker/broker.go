// Package broker moves envelopes between pipeline stages over durable
// named channels. The Redis implementation backs each channel with a
// stream and a consumer group; Memory serves tests and single-process runs.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// DeadLetterChannel receives every negatively acknowledged envelope.
const DeadLetterChannel = "dead-letter"

var (
	ErrClosed          = errors.New("broker closed")
	ErrUnknownChannel  = errors.New("channel not declared")
	ErrUnknownDelivery = errors.New("delivery not pending")
	ErrEmptyChannel    = errors.New("envelope channel must not be empty")
)

// Envelope is the unit published on a channel.
type Envelope struct {
	ID         string          `json:"id"`
	Key        string          `json:"key"`
	Channel    string          `json:"channel"`
	Timestamp  time.Time       `json:"timestamp"`
	Persistent bool            `json:"persistent"`
	Payload    json.RawMessage `json:"payload"`
}

// DeadLetter is an envelope that a consumer rejected.
type DeadLetter struct {
	Envelope
	Source   string    `json:"source"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// Delivery is an envelope handed to one consumer and pending until it is
// acknowledged. Err is set when the stored envelope could not be decoded.
type Delivery struct {
	Envelope Envelope
	Channel  string
	Err      error

	tag      string
	consumer string
}

// Broker is the channel transport.
type Broker interface {
	// Declare creates the channels, and the dead-letter channel, if missing.
	Declare(ctx context.Context, channels ...string) error
	// Publish appends env to env.Channel.
	Publish(ctx context.Context, env Envelope) error
	// Fetch blocks briefly for the next envelope on channel. It returns a
	// nil Delivery when nothing arrived in time.
	Fetch(ctx context.Context, channel, consumer string) (*Delivery, error)
	// Touch resets the idle time of a pending delivery so no other
	// consumer claims it while its handler is still running.
	Touch(ctx context.Context, d *Delivery) error
	// Ack removes d from the pending set.
	Ack(ctx context.Context, d *Delivery) error
	// Nack moves d to the dead-letter channel with reason. It is never
	// redelivered on its source channel.
	Nack(ctx context.Context, d *Delivery, reason string) error
	// DeadLetters returns up to limit dead letters, newest first.
	DeadLetters(ctx context.Context, limit int) ([]DeadLetter, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	// Close releases the transport.
	Close() error
}
