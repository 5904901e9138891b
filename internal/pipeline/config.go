package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/backoff"
)

// Config tunes the pipeline stages.
type Config struct {
	Slots          int    `toml:"slots"`
	CancelPoll     string `toml:"cancel_poll"`
	Backoff        string `toml:"backoff"`
	BackoffInitial string `toml:"backoff_initial"`
	BackoffMax     string `toml:"backoff_max"`
	StaleAfter     string `toml:"stale_after"`
	NotifyAttempts int    `toml:"notify_attempts"`
	ArtifactName   string `toml:"artifact_name"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Slots          string
	CancelPoll     string
	Backoff        string
	BackoffInitial string
	BackoffMax     string
	StaleAfter     string
	NotifyAttempts string
}

// CancelPollDuration is how often a running job's cancel flag is read.
func (c *Config) CancelPollDuration() time.Duration {
	d, _ := time.ParseDuration(c.CancelPoll)
	return d
}

// StaleAfterDuration is how long a processing job may go without a
// heartbeat before a redelivered execution treats its run as abandoned.
func (c *Config) StaleAfterDuration() time.Duration {
	d, _ := time.ParseDuration(c.StaleAfter)
	return d
}

// RetryStrategy is the delay before a retried job is republished.
func (c *Config) RetryStrategy() backoff.Strategy {
	initial, _ := time.ParseDuration(c.BackoffInitial)
	maxDelay, _ := time.ParseDuration(c.BackoffMax)
	s, err := backoff.Parse(c.Backoff, initial, maxDelay)
	if err != nil {
		return backoff.Default()
	}
	return s
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Slots != 0 {
		c.Slots = overlay.Slots
	}
	if overlay.CancelPoll != "" {
		c.CancelPoll = overlay.CancelPoll
	}
	if overlay.Backoff != "" {
		c.Backoff = overlay.Backoff
	}
	if overlay.BackoffInitial != "" {
		c.BackoffInitial = overlay.BackoffInitial
	}
	if overlay.BackoffMax != "" {
		c.BackoffMax = overlay.BackoffMax
	}
	if overlay.StaleAfter != "" {
		c.StaleAfter = overlay.StaleAfter
	}
	if overlay.NotifyAttempts != 0 {
		c.NotifyAttempts = overlay.NotifyAttempts
	}
	if overlay.ArtifactName != "" {
		c.ArtifactName = overlay.ArtifactName
	}
}

func (c *Config) loadDefaults() {
	if c.Slots == 0 {
		c.Slots = 1
	}
	if c.CancelPoll == "" {
		c.CancelPoll = "5s"
	}
	if c.Backoff == "" {
		c.Backoff = "jitter"
	}
	if c.BackoffInitial == "" {
		c.BackoffInitial = "30s"
	}
	if c.BackoffMax == "" {
		c.BackoffMax = "10m"
	}
	if c.StaleAfter == "" {
		c.StaleAfter = "1m"
	}
	if c.NotifyAttempts == 0 {
		c.NotifyAttempts = 5
	}
	if c.ArtifactName == "" {
		c.ArtifactName = "screenshot.png"
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{env.Slots, &c.Slots},
		{env.NotifyAttempts, &c.NotifyAttempts},
	} {
		if f.name == "" {
			continue
		}
		if v := os.Getenv(f.name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*f.dst = n
			}
		}
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{env.CancelPoll, &c.CancelPoll},
		{env.Backoff, &c.Backoff},
		{env.BackoffInitial, &c.BackoffInitial},
		{env.BackoffMax, &c.BackoffMax},
		{env.StaleAfter, &c.StaleAfter},
	} {
		if f.name == "" {
			continue
		}
		if v := os.Getenv(f.name); v != "" {
			*f.dst = v
		}
	}
}

func (c *Config) validate() error {
	if c.Slots < 1 {
		return fmt.Errorf("slots must be at least 1, got %d", c.Slots)
	}
	poll, err := time.ParseDuration(c.CancelPoll)
	if err != nil {
		return fmt.Errorf("invalid cancel_poll: %w", err)
	}
	if poll <= 0 {
		return fmt.Errorf("invalid cancel_poll: must be positive")
	}
	stale, err := time.ParseDuration(c.StaleAfter)
	if err != nil {
		return fmt.Errorf("invalid stale_after: %w", err)
	}
	if stale < 3*poll {
		return fmt.Errorf("stale_after %s must be at least three cancel_poll intervals (%s)", c.StaleAfter, 3*poll)
	}
	if c.NotifyAttempts < 1 {
		return fmt.Errorf("notify_attempts must be at least 1, got %d", c.NotifyAttempts)
	}
	initial, err := time.ParseDuration(c.BackoffInitial)
	if err != nil {
		return fmt.Errorf("invalid backoff_initial: %w", err)
	}
	maxDelay, err := time.ParseDuration(c.BackoffMax)
	if err != nil {
		return fmt.Errorf("invalid backoff_max: %w", err)
	}
	if maxDelay < initial {
		return fmt.Errorf("backoff_max %s is below backoff_initial %s", c.BackoffMax, c.BackoffInitial)
	}
	if _, err := backoff.Parse(c.Backoff, initial, maxDelay); err != nil {
		return err
	}
	return nil
}
