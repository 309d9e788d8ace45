package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"marseille-outings-aggregator/internal/config"
	"marseille-outings-aggregator/internal/services"
)

// One-shot CLI wrapper around the aggregation pipeline. Useful for local
// debugging and for running the pipeline from an external scheduler instead
// of the built-in one.
func main() {
	sweep := flag.Bool("sweep", false, "run the debug link sweep instead of the full pipeline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	fetcher := services.NewPageFetcher(cfg.FetchTimeout)
	shotgun := services.NewShotgunClient(cfg.ShotgunEndpoint, cfg.FetchTimeout)
	store := services.NewStoreClient(cfg.SupabaseURL, cfg.ServiceRoleKey, cfg.FetchTimeout)

	archive, err := services.NewArchiveClient(ctx, cfg.S3BucketName)
	if err != nil {
		log.Printf("archive disabled: %v", err)
	}

	pipeline := services.NewPipeline(fetcher, shotgun, store, archive, cfg.EnrichTimeout)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *sweep {
		items := pipeline.DebugSweep(ctx)
		if err := enc.Encode(items); err != nil {
			log.Fatalf("encode sweep: %v", err)
		}
		return
	}

	report := pipeline.Run(ctx)
	if err := enc.Encode(report); err != nil {
		log.Fatalf("encode report: %v", err)
	}
	if len(report.Errors) > 0 {
		os.Exit(1)
	}
}
