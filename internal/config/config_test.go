package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("COURIER_DB_NAME", "courier")
	t.Setenv("COURIER_DB_USER", "courier")
	t.Setenv("COURIER_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Env() != "local" {
		t.Errorf("env = %s", cfg.Env())
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout = %s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.API.BasePath != "/api" || cfg.API.MaxBodySizeBytes() != 1<<20 {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Broker.Group != "courier" || cfg.Pipeline.Slots != 1 {
		t.Errorf("broker group %s slots %d", cfg.Broker.Group, cfg.Pipeline.Slots)
	}
	if cfg.Automation.Mode != "dry-run" || cfg.Notify.Kind != "log" {
		t.Errorf("automation %s notify %s", cfg.Automation.Mode, cfg.Notify.Kind)
	}
}

func TestLoadOverlay(t *testing.T) {
	setRequired(t)
	t.Setenv("COURIER_ENV", "staging")

	writeFile(t, config.BaseConfigFile, `
shutdown_timeout = "10s"

[server]
port = 9000

[pipeline]
slots = 2
backoff = "exponential"

[api]
max_body_size = "2MB"
`)
	writeFile(t, "config.staging.toml", `
[pipeline]
slots = 4

[notify]
kind = "webhook"
webhook_url = "https://hooks.example.com/courier"
`)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9000 || cfg.ShutdownTimeoutDuration() != 10*time.Second {
		t.Errorf("base values lost: port %d timeout %s", cfg.Server.Port, cfg.ShutdownTimeout)
	}
	if cfg.Pipeline.Slots != 4 || cfg.Pipeline.Backoff != "exponential" {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Notify.Kind != "webhook" {
		t.Errorf("notify kind = %s", cfg.Notify.Kind)
	}
	if cfg.API.MaxBodySizeBytes() != 2<<20 {
		t.Errorf("max body = %d", cfg.API.MaxBodySizeBytes())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	setRequired(t)
	t.Setenv("COURIER_SERVER_PORT", "7000")
	t.Setenv("COURIER_PIPELINE_SLOTS", "3")
	t.Setenv("COURIER_BROKER_ADDR", "redis:6379")

	writeFile(t, config.BaseConfigFile, "[server]\nport = 9000\n")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.Pipeline.Slots != 3 || cfg.Broker.Addr != "redis:6379" {
		t.Errorf("port %d slots %d addr %s", cfg.Server.Port, cfg.Pipeline.Slots, cfg.Broker.Addr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"bad toml", "[server\n"},
		{"bad port", "[server]\nport = 70000\n"},
		{"bad base path", "[api]\nbase_path = \"api/\"\n"},
		{"bad body size", "[api]\nmax_body_size = \"lots\"\n"},
		{"webhook without url", "[notify]\nkind = \"webhook\"\n"},
		{"remote without driver", "[automation]\nmode = \"remote\"\n"},
		{"auth without issuer", "[api.auth]\nenabled = true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			writeFile(t, config.BaseConfigFile, tt.file)

			if _, err := config.Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDatabase(t *testing.T) {
	setRequired(t)
	t.Setenv("COURIER_DB_PASSWORD", "secret")

	writeFile(t, config.BaseConfigFile, `
[database]
host = "db.internal"

[notify]
kind = "webhook"
`)

	db, err := config.LoadDatabase()
	if err != nil {
		t.Fatalf("load database: %v", err)
	}
	if db.Host != "db.internal" || db.Password != "secret" {
		t.Errorf("database = %s %q", db.Host, db.Password)
	}

	if _, err := config.Load(); err == nil {
		t.Error("full load accepted an invalid notify section")
	}
}
