package notify

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Kinds of notifier.
const (
	KindLog     = "log"
	KindWebhook = "webhook"
)

// Config selects the notifier.
type Config struct {
	Kind       string `toml:"kind"`
	WebhookURL string `toml:"webhook_url"`
	Token      string `toml:"token"`
	Timeout    string `toml:"timeout"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Kind       string
	WebhookURL string
	Token      string
	Timeout    string
}

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
	if overlay.Kind != "" {
		c.Kind = overlay.Kind
	}
	if overlay.WebhookURL != "" {
		c.WebhookURL = overlay.WebhookURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Kind == "" {
		c.Kind = KindLog
	}
	if c.Timeout == "" {
		c.Timeout = "15s"
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{env.Kind, &c.Kind},
		{env.WebhookURL, &c.WebhookURL},
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
	switch c.Kind {
	case KindLog:
	case KindWebhook:
		u, err := url.Parse(c.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhook kind requires an http(s) webhook_url, got %q", c.WebhookURL)
		}
	default:
		return fmt.Errorf("unknown kind: %s", c.Kind)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// New builds the Notifier for cfg.
func New(cfg *Config, logger *slog.Logger) Notifier {
	if cfg.Kind == KindWebhook {
		client := &http.Client{Timeout: cfg.TimeoutDuration()}
		return NewWebhookNotifier(cfg.WebhookURL, cfg.Token, client, logger)
	}
	return NewLogNotifier(logger)
}
