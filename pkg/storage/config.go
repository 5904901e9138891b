package storage

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config selects the blob container that holds run artifacts.
// ConnectionString takes precedence. Without it the client authenticates to
// ServiceURL with the default Azure credential chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	Prefix           string `toml:"prefix"`
}

// Env maps config fields to environment variable names.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	Prefix           string
}

// UsesCredential reports whether the client is built from a token credential.
func (c *Config) UsesCredential() bool {
	return c.ConnectionString == ""
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
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "artifacts"
	}
	if c.Prefix == "" {
		c.Prefix = "jobs"
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{env.ContainerName, &c.ContainerName},
		{env.ConnectionString, &c.ConnectionString},
		{env.ServiceURL, &c.ServiceURL},
		{env.Prefix, &c.Prefix},
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
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if strings.Contains(c.Prefix, "..") {
		return fmt.Errorf("prefix contains invalid path segment")
	}
	if c.ConnectionString != "" {
		return nil
	}
	if c.ServiceURL == "" {
		return fmt.Errorf("connection_string or service_url required")
	}
	u, err := url.Parse(c.ServiceURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid service_url: %s", c.ServiceURL)
	}
	return nil
}
