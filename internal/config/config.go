package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/automation"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/notify"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/pipeline"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/database"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCourierEnv             = "COURIER_ENV"
	EnvCourierShutdownTimeout = "COURIER_SHUTDOWN_TIMEOUT"
	EnvCourierVersion         = "COURIER_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "COURIER_DB_HOST",
	Port:            "COURIER_DB_PORT",
	Name:            "COURIER_DB_NAME",
	User:            "COURIER_DB_USER",
	Password:        "COURIER_DB_PASSWORD",
	SSLMode:         "COURIER_DB_SSL_MODE",
	ApplicationName: "COURIER_DB_APPLICATION_NAME",
	MaxOpenConns:    "COURIER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "COURIER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "COURIER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "COURIER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "COURIER_STORAGE_CONTAINER_NAME",
	ConnectionString: "COURIER_STORAGE_CONNECTION_STRING",
	ServiceURL:       "COURIER_STORAGE_SERVICE_URL",
	Prefix:           "COURIER_STORAGE_PREFIX",
}

var brokerEnv = &broker.Env{
	Addr:      "COURIER_BROKER_ADDR",
	Username:  "COURIER_BROKER_USERNAME",
	Password:  "COURIER_BROKER_PASSWORD",
	DB:        "COURIER_BROKER_DB",
	Group:     "COURIER_BROKER_GROUP",
	Prefix:    "COURIER_BROKER_PREFIX",
	Block:     "COURIER_BROKER_BLOCK",
	ClaimIdle: "COURIER_BROKER_CLAIM_IDLE",
	Heartbeat: "COURIER_BROKER_HEARTBEAT",
}

var pipelineEnv = &pipeline.Env{
	Slots:          "COURIER_PIPELINE_SLOTS",
	CancelPoll:     "COURIER_PIPELINE_CANCEL_POLL",
	Backoff:        "COURIER_PIPELINE_BACKOFF",
	BackoffInitial: "COURIER_PIPELINE_BACKOFF_INITIAL",
	BackoffMax:     "COURIER_PIPELINE_BACKOFF_MAX",
	StaleAfter:     "COURIER_PIPELINE_STALE_AFTER",
	NotifyAttempts: "COURIER_PIPELINE_NOTIFY_ATTEMPTS",
}

var workflowEnv = &workflow.Env{
	Pacing:         "COURIER_WORKFLOW_PACING",
	StepTimeout:    "COURIER_WORKFLOW_STEP_TIMEOUT",
	CaptureTimeout: "COURIER_WORKFLOW_CAPTURE_TIMEOUT",
}

var automationEnv = &automation.Env{
	Mode:      "COURIER_AUTOMATION_MODE",
	PortalURL: "COURIER_AUTOMATION_PORTAL_URL",
	DriverURL: "COURIER_AUTOMATION_DRIVER_URL",
	Token:     "COURIER_AUTOMATION_TOKEN",
	Timeout:   "COURIER_AUTOMATION_TIMEOUT",
}

var notifyEnv = &notify.Env{
	Kind:       "COURIER_NOTIFY_KIND",
	WebhookURL: "COURIER_NOTIFY_WEBHOOK_URL",
	Token:      "COURIER_NOTIFY_TOKEN",
	Timeout:    "COURIER_NOTIFY_TIMEOUT",
}

// Config is the root configuration shared by the server and worker.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	Broker          broker.Config     `toml:"broker"`
	API             APIConfig         `toml:"api"`
	Pipeline        pipeline.Config   `toml:"pipeline"`
	Workflow        workflow.Config   `toml:"workflow"`
	Automation      automation.Config `toml:"automation"`
	Notify          notify.Config     `toml:"notify"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the COURIER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCourierEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase reads the same files as Load but finalizes only the
// database section.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	return &cfg.Database, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Broker.Merge(&overlay.Broker)
	c.API.Merge(&overlay.API)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Workflow.Merge(&overlay.Workflow)
	c.Automation.Merge(&overlay.Automation)
	c.Notify.Merge(&overlay.Notify)
}

func read() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Broker.Finalize(brokerEnv); err != nil {
		return fmt.Errorf("broker: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Workflow.Finalize(workflowEnv); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if err := c.Automation.Finalize(automationEnv); err != nil {
		return fmt.Errorf("automation: %w", err)
	}
	if err := c.Notify.Finalize(notifyEnv); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCourierShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCourierVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCourierEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
