package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SCRAPE_INTERVAL_HOURS", "")
	t.Setenv("ENRICH_TIMEOUT_MS", "")
	t.Setenv("SHOTGUN_ENDPOINT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.ScrapeIntervalHours != 6 {
		t.Errorf("ScrapeIntervalHours = %d", cfg.ScrapeIntervalHours)
	}
	if cfg.EnrichTimeout != 3*time.Second {
		t.Errorf("EnrichTimeout = %v", cfg.EnrichTimeout)
	}
	if cfg.ShotgunEndpoint == "" {
		t.Error("ShotgunEndpoint empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCRAPE_INTERVAL_HOURS", "12")
	t.Setenv("ENRICH_TIMEOUT_MS", "5000")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("PROJECT_URL", "https://fallback.example")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")
	t.Setenv("SERVICE_ROLE_KEY", "fallback-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.ScrapeIntervalHours != 12 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.EnrichTimeout != 5*time.Second {
		t.Errorf("EnrichTimeout = %v", cfg.EnrichTimeout)
	}
	if cfg.SupabaseURL != "https://fallback.example" || cfg.ServiceRoleKey != "fallback-key" {
		t.Errorf("env fallbacks not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SCRAPE_INTERVAL_HOURS", "zero")
	if _, err := Load(); err == nil {
		t.Error("bad interval accepted")
	}
	t.Setenv("SCRAPE_INTERVAL_HOURS", "6")
	t.Setenv("ENRICH_TIMEOUT_MS", "-5")
	if _, err := Load(); err == nil {
		t.Error("negative timeout accepted")
	}
}
