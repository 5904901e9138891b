package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// Config bounds list window sizes.
type Config struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// ConfigEnv maps config fields to environment variable names.
type ConfigEnv struct {
	DefaultLimit string
	MaxLimit     string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultLimit != 0 {
		c.DefaultLimit = overlay.DefaultLimit
	}
	if overlay.MaxLimit != 0 {
		c.MaxLimit = overlay.MaxLimit
	}
}

func (c *Config) loadDefaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 25
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 200
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	envInt(env.DefaultLimit, &c.DefaultLimit)
	envInt(env.MaxLimit, &c.MaxLimit)
}

func (c *Config) validate() error {
	if c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default_limit cannot exceed max_limit")
	}
	return nil
}

func envInt(name string, dst *int) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
