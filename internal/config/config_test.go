package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GEOCODER", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DashboardRefresh != 30*time.Minute {
		t.Fatalf("expected 30m refresh, got %s", cfg.DashboardRefresh)
	}
	if cfg.GeocodeCountry != "USA" || cfg.SMTPPort != "587" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("GEOCODER", "google")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.RedisAddr != "localhost:6379" || cfg.CacheTTL != time.Hour || cfg.Geocoder != "google" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}
