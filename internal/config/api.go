package config

import (
	"fmt"
	"os"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/formatting"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/handlers"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/middleware"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/module"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/pagination"
)

const (
	EnvAPIBasePath    = "COURIER_API_BASE_PATH"
	EnvAPIMaxBodySize = "COURIER_API_MAX_BODY_SIZE"
)

var authEnv = &middleware.AuthEnv{
	Enabled:  "COURIER_AUTH_ENABLED",
	Issuer:   "COURIER_AUTH_ISSUER",
	Audience: "COURIER_AUTH_AUDIENCE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultLimit: "COURIER_PAGINATION_DEFAULT_LIMIT",
	MaxLimit:     "COURIER_PAGINATION_MAX_LIMIT",
}

// APIConfig holds API routing, request limits, pagination and auth settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	Pagination  pagination.Config     `toml:"pagination"`
	Auth        middleware.AuthConfig `toml:"auth"`
}

// MaxBodySizeBytes returns MaxBodySize as a byte count.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return handlers.MaxBodySize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested pagination and auth configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.Pagination.Merge(&overlay.Pagination)
	c.Auth.Merge(&overlay.Auth)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	if err := module.ValidatePrefix(c.BasePath); err != nil {
		return fmt.Errorf("invalid base_path: %w", err)
	}
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("invalid max_body_size: must be positive")
	}
	return nil
}
