package automation

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Session modes.
const (
	ModeDryRun = "dry-run"
	ModeRemote = "remote"
)

// Config selects and configures the automation session driver.
type Config struct {
	Mode      string `toml:"mode"`
	PortalURL string `toml:"portal_url"`
	DriverURL string `toml:"driver_url"`
	Token     string `toml:"token"`
	Timeout   string `toml:"timeout"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Mode      string
	PortalURL string
	DriverURL string
	Token     string
	Timeout   string
}

// TimeoutDuration bounds each driver request.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
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
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.PortalURL != "" {
		c.PortalURL = overlay.PortalURL
	}
	if overlay.DriverURL != "" {
		c.DriverURL = overlay.DriverURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDryRun
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{env.Mode, &c.Mode},
		{env.PortalURL, &c.PortalURL},
		{env.DriverURL, &c.DriverURL},
		{env.Token, &c.Token},
		{env.Timeout, &c.Timeout},
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
	switch c.Mode {
	case ModeDryRun:
	case ModeRemote:
		u, err := url.Parse(c.DriverURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("remote mode requires an absolute driver_url, got %q", c.DriverURL)
		}
	default:
		return fmt.Errorf("unknown mode: %s", c.Mode)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
