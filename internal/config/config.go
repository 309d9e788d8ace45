// Package config loads runtime configuration from the environment.
// Only the service port is strictly required to boot; missing store
// credentials degrade persistence to a reported skip rather than a crash,
// matching the pipeline's error model.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the aggregator.
type Config struct {
	Port                string
	SupabaseURL         string
	ServiceRoleKey      string
	ShotgunEndpoint     string
	S3BucketName        string // empty disables the snapshot archive
	ScrapeIntervalHours int    // how often the cron trigger fires
	EnrichTimeout       time.Duration
	FetchTimeout        time.Duration
}

const (
	defaultShotgunEndpoint = "https://shotgun.live/api/graphql"
	defaultEnrichTimeout   = 3 * time.Second
	defaultFetchTimeout    = 15 * time.Second
)

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	interval := 6
	if s := os.Getenv("SCRAPE_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SCRAPE_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	enrichTimeout := defaultEnrichTimeout
	if s := os.Getenv("ENRICH_TIMEOUT_MS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("ENRICH_TIMEOUT_MS must be a positive integer, got %q", s)
		}
		enrichTimeout = time.Duration(v) * time.Millisecond
	}

	shotgun := os.Getenv("SHOTGUN_ENDPOINT")
	if shotgun == "" {
		shotgun = defaultShotgunEndpoint
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	if supabaseURL == "" {
		supabaseURL = os.Getenv("PROJECT_URL")
	}
	serviceKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	if serviceKey == "" {
		serviceKey = os.Getenv("SERVICE_ROLE_KEY")
	}

	return &Config{
		Port:                port,
		SupabaseURL:         supabaseURL,
		ServiceRoleKey:      serviceKey,
		ShotgunEndpoint:     shotgun,
		S3BucketName:        os.Getenv("S3_BUCKET_NAME"),
		ScrapeIntervalHours: interval,
		EnrichTimeout:       enrichTimeout,
		FetchTimeout:        defaultFetchTimeout,
	}, nil
}
