package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marseille-outings-aggregator/internal/api"
	"marseille-outings-aggregator/internal/config"
	"marseille-outings-aggregator/internal/scheduler"
	"marseille-outings-aggregator/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	fetcher := services.NewPageFetcher(cfg.FetchTimeout)
	shotgun := services.NewShotgunClient(cfg.ShotgunEndpoint, cfg.FetchTimeout)
	store := services.NewStoreClient(cfg.SupabaseURL, cfg.ServiceRoleKey, cfg.FetchTimeout)
	if !store.Enabled() {
		log.Println("store credentials missing, persistence disabled")
	}

	archive, err := services.NewArchiveClient(ctx, cfg.S3BucketName)
	if err != nil {
		log.Printf("archive disabled: %v", err)
	}

	pipeline := services.NewPipeline(fetcher, shotgun, store, archive, cfg.EnrichTimeout)
	handler := api.NewHandler(pipeline, store, shotgun)

	sched, err := scheduler.New(pipeline, cfg.ScrapeIntervalHours)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	sched.Start()
	log.Printf("scheduled aggregation every %dh", cfg.ScrapeIntervalHours)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpAdapter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	sched.Stop()
}

// httpAdapter translates net/http requests into the transport-neutral shape
// and writes the routed response back.
func httpAdapter(handler *api.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		res := handler.Handle(r.Context(), api.Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
		})

		for k, v := range res.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(res.StatusCode)
		if len(res.Body) > 0 {
			w.Write(res.Body)
		}
	})
}
