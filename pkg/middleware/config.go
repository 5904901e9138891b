package middleware

import (
	"fmt"
	"os"
	"strconv"
)

// AuthConfig enables OIDC bearer-token verification on protected routes.
type AuthConfig struct {
	Enabled  bool   `toml:"enabled"`
	Issuer   string `toml:"issuer"`
	Audience string `toml:"audience"`
}

// AuthEnv maps auth config fields to environment variable names.
type AuthEnv struct {
	Enabled  string
	Issuer   string
	Audience string
}

// Finalize applies environment overrides and validation.
func (c *AuthConfig) Finalize(env *AuthEnv) error {
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	c.Enabled = overlay.Enabled
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.Audience != "" {
		c.Audience = overlay.Audience
	}
}

func (c *AuthConfig) loadEnv(env *AuthEnv) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.Audience != "" {
		if v := os.Getenv(env.Audience); v != "" {
			c.Audience = v
		}
	}
}

func (c *AuthConfig) validate() error {
	if c.Enabled && c.Issuer == "" {
		return fmt.Errorf("issuer required when auth is enabled")
	}
	return nil
}
