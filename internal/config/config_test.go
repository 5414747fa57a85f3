package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != defaultHTTPPort {
		t.Errorf("expected port %d, got %d", defaultHTTPPort, cfg.HTTP.Port)
	}
	if cfg.Redis.CartTTLHours != defaultCartTTLHours {
		t.Errorf("expected cart TTL %d, got %d", defaultCartTTLHours, cfg.Redis.CartTTLHours)
	}
	if cfg.Settings.CacheTTLSeconds != defaultSettingsCacheTTL {
		t.Errorf("expected settings TTL %d, got %d", defaultSettingsCacheTTL, cfg.Settings.CacheTTLSeconds)
	}
	if cfg.Service.Name != defaultServiceName {
		t.Errorf("expected service name %q, got %q", defaultServiceName, cfg.Service.Name)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CART_TTL_HOURS", "24")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/storefront")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("expected 2 brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("unexpected redis URL %q", cfg.Redis.URL)
	}
	if cfg.Redis.CartTTLHours != 24 {
		t.Errorf("expected cart TTL 24, got %d", cfg.Redis.CartTTLHours)
	}
	if cfg.Database.URL != "postgres://u:p@db:5432/storefront" {
		t.Errorf("unexpected database URL %q", cfg.Database.URL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("API_HTTP_PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid port")
	}
}
