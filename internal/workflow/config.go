package workflow

import (
	"fmt"
	"os"
	"time"
)

// Config tunes step pacing and per-operation timeouts.
type Config struct {
	Pacing         string `toml:"pacing"`
	StepTimeout    string `toml:"step_timeout"`
	CaptureTimeout string `toml:"capture_timeout"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Pacing         string
	StepTimeout    string
	CaptureTimeout string
}

func (c *Config) PacingDuration() time.Duration {
	d, _ := time.ParseDuration(c.Pacing)
	return d
}

func (c *Config) StepTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.StepTimeout)
	return d
}

func (c *Config) CaptureTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CaptureTimeout)
	return d
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
	if overlay.Pacing != "" {
		c.Pacing = overlay.Pacing
	}
	if overlay.StepTimeout != "" {
		c.StepTimeout = overlay.StepTimeout
	}
	if overlay.CaptureTimeout != "" {
		c.CaptureTimeout = overlay.CaptureTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Pacing == "" {
		c.Pacing = "2s"
	}
	if c.StepTimeout == "" {
		c.StepTimeout = "2m"
	}
	if c.CaptureTimeout == "" {
		c.CaptureTimeout = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Pacing != "" {
		if v := os.Getenv(env.Pacing); v != "" {
			c.Pacing = v
		}
	}
	if env.StepTimeout != "" {
		if v := os.Getenv(env.StepTimeout); v != "" {
			c.StepTimeout = v
		}
	}
	if env.CaptureTimeout != "" {
		if v := os.Getenv(env.CaptureTimeout); v != "" {
			c.CaptureTimeout = v
		}
	}
}

func (c *Config) validate() error {
	pacing, err := time.ParseDuration(c.Pacing)
	if err != nil {
		return fmt.Errorf("invalid pacing: %w", err)
	}
	if pacing < 0 {
		return fmt.Errorf("invalid pacing: %s is negative", c.Pacing)
	}
	step, err := time.ParseDuration(c.StepTimeout)
	if err != nil {
		return fmt.Errorf("invalid step_timeout: %w", err)
	}
	if step <= 0 {
		return fmt.Errorf("invalid step_timeout: must be positive")
	}
	capture, err := time.ParseDuration(c.CaptureTimeout)
	if err != nil {
		return fmt.Errorf("invalid capture_timeout: %w", err)
	}
	if capture <= 0 {
		return fmt.Errorf("invalid capture_timeout: must be positive")
	}
	return nil
}
