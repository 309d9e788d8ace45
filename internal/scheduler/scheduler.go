// Package scheduler drives periodic aggregation runs.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"marseille-outings-aggregator/internal/services"
)

// Scheduler triggers a full pipeline run on a fixed interval. Runs are
// serialized: cron's SkipIfStillRunning wrapper drops a tick that fires
// while the previous run is still going.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *services.Pipeline
}

// New creates a scheduler that runs the pipeline every intervalHours hours.
func New(pipeline *services.Pipeline, intervalHours int) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	s := &Scheduler{cron: c, pipeline: pipeline}
	spec := fmt.Sprintf("@every %dh", intervalHours)
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the schedule and fires an immediate first run so a fresh
// deployment serves data without waiting a full interval.
func (s *Scheduler) Start() {
	s.cron.Start()
	go s.runOnce()
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runOnce() {
	report := s.pipeline.Run(context.Background())
	log.Printf("scheduler: run finished: %d raw, %d stored, %d errors in %dms",
		report.TotalRaw, report.InsertedCount, len(report.Errors), report.ElapsedMS)
}
