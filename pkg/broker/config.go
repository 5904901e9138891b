package broker

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the Redis connection and stream consumption settings.
type Config struct {
	Addr      string `toml:"addr"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	Group     string `toml:"group"`
	Prefix    string `toml:"prefix"`
	Block     string `toml:"block"`
	ClaimIdle string `toml:"claim_idle"`
	Heartbeat string `toml:"heartbeat"`
	MaxLen    int64  `toml:"max_len"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Addr      string
	Username  string
	Password  string
	DB        string
	Group     string
	Prefix    string
	Block     string
	ClaimIdle string
	Heartbeat string
}

// BlockDuration is how long a Fetch waits for a new entry.
func (c *Config) BlockDuration() time.Duration {
	d, _ := time.ParseDuration(c.Block)
	return d
}

// ClaimIdleDuration is how long an entry may stay pending with a dead
// consumer before another consumer claims it.
func (c *Config) ClaimIdleDuration() time.Duration {
	d, _ := time.ParseDuration(c.ClaimIdle)
	return d
}

// HeartbeatDuration is how often a consumer touches the delivery it is
// handling. It stays below ClaimIdleDuration.
func (c *Config) HeartbeatDuration() time.Duration {
	d, _ := time.ParseDuration(c.Heartbeat)
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
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.Group != "" {
		c.Group = overlay.Group
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.Block != "" {
		c.Block = overlay.Block
	}
	if overlay.ClaimIdle != "" {
		c.ClaimIdle = overlay.ClaimIdle
	}
	if overlay.Heartbeat != "" {
		c.Heartbeat = overlay.Heartbeat
	}
	if overlay.MaxLen != 0 {
		c.MaxLen = overlay.MaxLen
	}
}

func (c *Config) loadDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Group == "" {
		c.Group = "courier"
	}
	if c.Prefix == "" {
		c.Prefix = "courier"
	}
	if c.Block == "" {
		c.Block = "2s"
	}
	if c.ClaimIdle == "" {
		c.ClaimIdle = "10m"
	}
	if c.MaxLen == 0 {
		c.MaxLen = 100000
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{env.Addr, &c.Addr},
		{env.Username, &c.Username},
		{env.Password, &c.Password},
		{env.Group, &c.Group},
		{env.Prefix, &c.Prefix},
		{env.Block, &c.Block},
		{env.ClaimIdle, &c.ClaimIdle},
		{env.Heartbeat, &c.Heartbeat},
	} {
		if f.name == "" {
			continue
		}
		if v := os.Getenv(f.name); v != "" {
			*f.dst = v
		}
	}

	if env.DB != "" {
		if v := os.Getenv(env.DB); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.DB = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Group == "" {
		return fmt.Errorf("group required")
	}
	if c.DB < 0 {
		return fmt.Errorf("invalid db: %d", c.DB)
	}
	block, err := time.ParseDuration(c.Block)
	if err != nil {
		return fmt.Errorf("invalid block: %w", err)
	}
	if block <= 0 {
		return fmt.Errorf("block must be positive")
	}
	claimIdle, err := time.ParseDuration(c.ClaimIdle)
	if err != nil {
		return fmt.Errorf("invalid claim_idle: %w", err)
	}
	if claimIdle <= 0 {
		return fmt.Errorf("claim_idle must be positive")
	}
	if c.Heartbeat == "" {
		c.Heartbeat = (claimIdle / 3).String()
	}
	heartbeat, err := time.ParseDuration(c.Heartbeat)
	if err != nil {
		return fmt.Errorf("invalid heartbeat: %w", err)
	}
	if heartbeat <= 0 || heartbeat*2 > claimIdle {
		return fmt.Errorf("heartbeat %s must be positive and at most half of claim_idle %s", c.Heartbeat, c.ClaimIdle)
	}
	return nil
}
