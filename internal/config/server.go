package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "COURIER_SERVER_HOST"
	EnvServerPort              = "COURIER_SERVER_PORT"
	EnvServerReadHeaderTimeout = "COURIER_SERVER_READ_HEADER_TIMEOUT"
	EnvServerReadTimeout       = "COURIER_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout      = "COURIER_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "COURIER_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "COURIER_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	ReadTimeout       string `toml:"read_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReadHeaderTimeoutDuration bounds reading request headers.
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return duration(c.ReadHeaderTimeout)
}

// ReadTimeoutDuration bounds reading the whole request.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return duration(c.ReadTimeout)
}

// WriteTimeoutDuration bounds writing the response.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return duration(c.WriteTimeout)
}

func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	return duration(c.IdleTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range c.timeouts(overlay) {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

type timeoutField struct {
	name     string
	env      string
	def      string
	dst, src *string
}

// timeouts pairs every timeout field of c with the same field of other.
func (c *ServerConfig) timeouts(other *ServerConfig) []timeoutField {
	return []timeoutField{
		{"read_header_timeout", EnvServerReadHeaderTimeout, "10s", &c.ReadHeaderTimeout, &other.ReadHeaderTimeout},
		{"read_timeout", EnvServerReadTimeout, "1m", &c.ReadTimeout, &other.ReadTimeout},
		{"write_timeout", EnvServerWriteTimeout, "2m", &c.WriteTimeout, &other.WriteTimeout},
		{"idle_timeout", EnvServerIdleTimeout, "2m", &c.IdleTimeout, &other.IdleTimeout},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", &c.ShutdownTimeout, &other.ShutdownTimeout},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, f := range c.timeouts(c) {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for _, f := range c.timeouts(c) {
		if v := os.Getenv(f.env); v != "" {
			*f.dst = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.timeouts(c) {
		if _, err := time.ParseDuration(*f.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
