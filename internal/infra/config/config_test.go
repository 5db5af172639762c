package config_test

import (
	"testing"
	"time"

	"venuedash/internal/infra/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("SESSION_TTL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorageDriver != config.DriverMemory {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, config.DriverMemory)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.OutboxRelay() {
		t.Error("OutboxRelay() = true without brokers")
	}
	if len(cfg.RetryBackoff) == 0 {
		t.Error("RetryBackoff is empty")
	}
}

func TestLoadDriverRequirements(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "mongo without uri", env: map[string]string{"STORAGE_DRIVER": "mongo", "MONGO_URI": ""}, wantErr: true},
		{name: "mongo with uri", env: map[string]string{"STORAGE_DRIVER": "mongo", "MONGO_URI": "mongodb://localhost:27017"}},
		{name: "remote without url", env: map[string]string{"STORAGE_DRIVER": "remote", "VENUE_API_URL": ""}, wantErr: true},
		{name: "remote with url", env: map[string]string{"STORAGE_DRIVER": "remote", "VENUE_API_URL": "http://api.local/"}},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}, wantErr: true},
		{name: "bad duration", env: map[string]string{"SESSION_TTL": "soon"}, wantErr: true},
		{name: "bad bool", env: map[string]string{"OUTBOX_ENABLED": "maybe"}, wantErr: true},
		{name: "bad redis db", env: map[string]string{"REDIS_DB": "one"}, wantErr: true},
		{name: "bad rate limit", env: map[string]string{"WRITE_RATE_LIMIT": "fast"}, wantErr: true},
		{name: "negative burst", env: map[string]string{"WRITE_RATE_BURST": "-1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOutboxRelayNeedsMongoAndBrokers(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("OUTBOX_ENABLED", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(cfg.KafkaBrokers); got != 2 {
		t.Fatalf("KafkaBrokers = %v, want 2 entries", cfg.KafkaBrokers)
	}
	if !cfg.OutboxRelay() {
		t.Error("OutboxRelay() = false, want true")
	}
}
