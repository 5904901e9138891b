package broker

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"
)

var _ Broker = (*Memory)(nil)

// Memory is an in-process Broker. Envelopes are lost when the process exits.
type Memory struct {
	mu      sync.Mutex
	block   time.Duration
	queues  map[string][]Envelope
	pending map[string]Envelope
	dead    []DeadLetter
	signal  chan struct{}
	seq     int
	touches int
	closed  bool
}

// NewMemory returns a Memory broker whose Fetch waits up to block.
func NewMemory(block time.Duration) *Memory {
	return &Memory{
		block:   block,
		queues:  make(map[string][]Envelope),
		pending: make(map[string]Envelope),
		signal:  make(chan struct{}),
	}
}

func (m *Memory) Declare(_ context.Context, channels ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for _, ch := range append(slices.Clone(channels), DeadLetterChannel) {
		if _, ok := m.queues[ch]; !ok {
			m.queues[ch] = nil
		}
	}
	return nil
}

func (m *Memory) Publish(_ context.Context, env Envelope) error {
	if env.Channel == "" {
		return ErrEmptyChannel
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	q, ok := m.queues[env.Channel]
	if !ok {
		return ErrUnknownChannel
	}
	m.queues[env.Channel] = append(q, env)

	close(m.signal)
	m.signal = make(chan struct{})
	return nil
}

func (m *Memory) Fetch(ctx context.Context, channel, consumer string) (*Delivery, error) {
	timer := time.NewTimer(m.block)
	defer timer.Stop()

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrClosed
		}
		q, ok := m.queues[channel]
		if !ok {
			m.mu.Unlock()
			return nil, ErrUnknownChannel
		}
		if len(q) > 0 {
			env := q[0]
			m.queues[channel] = q[1:]
			m.seq++
			tag := channel + "-" + strconv.Itoa(m.seq)
			m.pending[tag] = env
			m.mu.Unlock()
			return &Delivery{Envelope: env, Channel: channel, tag: tag, consumer: consumer}, nil
		}
		signal := m.signal
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, nil
		case <-signal:
		}
	}
}

// Touch only checks that d is still pending; Memory never reclaims.
func (m *Memory) Touch(_ context.Context, d *Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pending[d.tag]; !ok {
		return ErrUnknownDelivery
	}
	m.touches++
	return nil
}

func (m *Memory) Ack(_ context.Context, d *Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pending[d.tag]; !ok {
		return ErrUnknownDelivery
	}
	delete(m.pending, d.tag)
	return nil
}

func (m *Memory) Nack(_ context.Context, d *Delivery, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pending[d.tag]; !ok {
		return ErrUnknownDelivery
	}
	delete(m.pending, d.tag)

	m.dead = append(m.dead, DeadLetter{
		Envelope: d.Envelope,
		Source:   d.Channel,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
	})
	return nil
}

func (m *Memory) DeadLetters(_ context.Context, limit int) ([]DeadLetter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]DeadLetter, 0, min(limit, len(m.dead)))
	for i := len(m.dead) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.dead[i])
	}
	return out, nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.signal)
	}
	return nil
}

// Len returns the number of queued, unfetched envelopes on channel.
func (m *Memory) Len(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[channel])
}

// Pending returns the number of fetched envelopes awaiting Ack or Nack.
func (m *Memory) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Touches returns how many times a pending delivery was touched.
func (m *Memory) Touches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touches
}
