package broker_test

import (
	"testing"
	"time"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
)

func TestConfigDefaults(t *testing.T) {
	var cfg broker.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.Addr != "localhost:6379" || cfg.Group != "courier" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.BlockDuration() != 2*time.Second {
		t.Errorf("block = %v", cfg.BlockDuration())
	}
	if cfg.ClaimIdleDuration() != 10*time.Minute {
		t.Errorf("claim_idle = %v", cfg.ClaimIdleDuration())
	}
}

func TestConfigRejectsZeroBlock(t *testing.T) {
	cfg := broker.Config{Block: "0s"}
	if err := cfg.Finalize(nil); err == nil {
		t.Fatal("expected error for zero block")
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_BROKER_ADDR", "redis:6380")
	t.Setenv("TEST_BROKER_DB", "3")

	var cfg broker.Config
	if err := cfg.Finalize(&broker.Env{Addr: "TEST_BROKER_ADDR", DB: "TEST_BROKER_DB"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Addr != "redis:6380" || cfg.DB != 3 {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestConfigHeartbeat(t *testing.T) {
	tests := []struct {
		name    string
		cfg     broker.Config
		want    time.Duration
		wantErr bool
	}{
		{name: "derived from claim_idle", cfg: broker.Config{ClaimIdle: "90s"}, want: 30 * time.Second},
		{name: "explicit", cfg: broker.Config{ClaimIdle: "10m", Heartbeat: "1m"}, want: time.Minute},
		{name: "too close to claim_idle", cfg: broker.Config{ClaimIdle: "1m", Heartbeat: "45s"}, wantErr: true},
		{name: "zero claim_idle", cfg: broker.Config{ClaimIdle: "0s"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("finalize: %v", err)
			}
			if got := tt.cfg.HeartbeatDuration(); got != tt.want {
				t.Errorf("heartbeat = %v, want %v", got, tt.want)
			}
		})
	}
}
