// Package backoff computes delays between retry attempts.
package backoff

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Strategy returns the delay before retry attempt n, where attempt 1 is the
// first retry after the initial failure. Implementations are stateless.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// Constant waits the same interval before every attempt.
type Constant time.Duration

func (c Constant) Delay(int) time.Duration {
	return time.Duration(c)
}

// Exponential doubles Initial each attempt up to Max. With Jitter the delay
// is drawn uniformly from [0, computed].
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
	Jitter  bool
}

func (e Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := float64(e.Initial) * math.Pow(2, float64(attempt-1))
	if e.Max > 0 && d > float64(e.Max) {
		d = float64(e.Max)
	}

	if e.Jitter {
		d = rand.Float64() * d
	}
	return time.Duration(d)
}

// Default is jittered exponential backoff from 1s capped at 1m.
func Default() Strategy {
	return Exponential{Initial: time.Second, Max: time.Minute, Jitter: true}
}

// Parse builds a strategy by name: "constant", "exponential" or "jitter".
func Parse(kind string, initial, max time.Duration) (Strategy, error) {
	switch kind {
	case "constant":
		return Constant(initial), nil
	case "exponential":
		return Exponential{Initial: initial, Max: max}, nil
	case "jitter", "":
		return Exponential{Initial: initial, Max: max, Jitter: true}, nil
	default:
		return nil, fmt.Errorf("unknown backoff strategy: %s", kind)
	}
}

// Sleep blocks for d or until ctx is done, returning ctx.Err in that case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
