package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"marseille-outings-aggregator/internal/models"
)

// enrichLimit bounds the number of merged candidates that get a detail-page
// enrichment pass per run. The rest are persisted with whatever the listing
// page provided.
const enrichLimit = 10

// previewLimit caps the sample of normalized rows echoed in a run report.
const previewLimit = 5

// RunReport summarizes one full pipeline run. Returned to the HTTP caller
// and archived as the run's audit record.
type RunReport struct {
	TotalRaw        int                   `json:"total_raw"`
	TotalDeduped    int                   `json:"total_deduped"`
	TotalNormalized int                   `json:"total_normalized"`
	InsertedCount   int                   `json:"inserted_count"`
	Errors          map[string]string     `json:"errors"`
	ElapsedMS       int64                 `json:"elapsed_ms"`
	Preview         []models.OutingRecord `json:"preview"`
}

// Pipeline wires the full collect-merge-enrich-normalize-store sequence.
type Pipeline struct {
	fetcher  *PageFetcher
	enricher *Enricher
	shotgun  *ShotgunClient
	store    *StoreClient
	archive  *ArchiveClient
	sources  []Source

	enrichTimeout time.Duration
}

// NewPipeline assembles a pipeline over the default source registry. The
// archive may be nil (disabled).
func NewPipeline(fetcher *PageFetcher, shotgun *ShotgunClient, store *StoreClient, archive *ArchiveClient, enrichTimeout time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:       fetcher,
		enricher:      NewEnricher(fetcher),
		shotgun:       shotgun,
		store:         store,
		archive:       archive,
		sources:       DefaultSources(),
		enrichTimeout: enrichTimeout,
	}
}

// Run executes one full aggregation pass. Per-source failures are recorded
// in the report's error map and never abort the run; only a store failure
// (other than missing credentials) surfaces there too, with whatever rows
// were normalized still counted.
func (p *Pipeline) Run(ctx context.Context) RunReport {
	start := time.Now()
	report := RunReport{Errors: make(map[string]string)}

	// Structured source first so HTML sources can override shared URLs at
	// merge time.
	var all []models.RawCandidate
	shotgunItems, err := RunIsolated("shotgun", func() ([]models.RawCandidate, error) {
		events, err := p.shotgun.Search(ctx, "marseille", 20)
		if err != nil {
			return nil, err
		}
		return ExtractShotgunEvents(events, "shotgun", start), nil
	})
	if err != nil {
		log.Printf("pipeline: shotgun failed: %v", err)
		report.Errors["shotgun"] = err.Error()
	}
	all = append(all, shotgunItems...)

	// HTML sources run concurrently; results are joined in registry order so
	// the merge priority stays deterministic regardless of completion order.
	results := make([][]models.RawCandidate, len(p.sources))
	errs := make([]error, len(p.sources))
	var wg sync.WaitGroup
	for i, src := range p.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i], errs[i] = RunIsolated(src.Name, func() ([]models.RawCandidate, error) {
				doc, err := p.fetcher.FetchDocument(ctx, src.URL)
				if err != nil {
					return nil, err
				}
				return src.Extract(doc, src.URL, src.Name), nil
			})
		}(i, src)
	}
	wg.Wait()

	for i, src := range p.sources {
		if errs[i] != nil {
			log.Printf("pipeline: source %s failed: %v", src.Name, errs[i])
			report.Errors[src.Name] = errs[i].Error()
			continue
		}
		log.Printf("pipeline: source %s yielded %d candidates", src.Name, len(results[i]))
		all = append(all, results[i]...)
	}

	report.TotalRaw = len(all)
	merged := MergeByURL(all)
	report.TotalDeduped = len(merged)

	p.enrichHead(ctx, merged)

	rows := NormalizeBatch(merged, start)
	report.TotalNormalized = len(rows)
	if n := len(rows); n > previewLimit {
		report.Preview = rows[:previewLimit]
	} else {
		report.Preview = rows
	}

	stored, err := p.store.UpsertOutings(ctx, rows)
	switch {
	case err == ErrMissingCredentials:
		log.Printf("pipeline: store skipped: no service credential configured")
		report.Errors["store"] = ErrMissingCredentials.Error()
	case err != nil:
		log.Printf("pipeline: store failed: %v", err)
		report.Errors["store"] = err.Error()
	default:
		report.InsertedCount = len(stored)
	}

	report.ElapsedMS = time.Since(start).Milliseconds()
	p.archiveRun(ctx, report, rows)
	return report
}

// enrichHead fills missing image/description fields for the first
// enrichLimit merged candidates, one bounded fetch each, concurrently.
func (p *Pipeline) enrichHead(ctx context.Context, merged []models.RawCandidate) {
	n := len(merged)
	if n > enrichLimit {
		n = enrichLimit
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			enriched, err := RunIsolated("enrich", func() (models.RawCandidate, error) {
				return p.enricher.Enrich(ctx, merged[i], p.enrichTimeout), nil
			})
			if err != nil {
				log.Printf("pipeline: enrichment of %s failed: %v", merged[i].URL, err)
				return
			}
			merged[i] = enriched
		}(i)
	}
	wg.Wait()
}

// archiveRun uploads the run report and a batch snapshot. Failures are
// logged as warnings only; the archive is never on the critical path.
func (p *Pipeline) archiveRun(ctx context.Context, report RunReport, rows []models.OutingRecord) {
	if p.archive == nil {
		return
	}
	if _, err := p.archive.UploadRunReport(ctx, report); err != nil {
		log.Printf("pipeline: run report archive failed: %v", err)
	}
	if len(rows) > 0 {
		if _, err := p.archive.BackupOutings(ctx, rows); err != nil {
			log.Printf("pipeline: outings backup failed: %v", err)
		}
	}
}

// DebugSweep runs the low-recall extractors over the active source list
// without touching the store and returns the full deduplicated candidate
// list; callers cap what they display. Used by the root endpoint's debug
// mode to check what an unconfigured source would yield.
func (p *Pipeline) DebugSweep(ctx context.Context) []models.RawCandidate {
	type sweepSource struct {
		name string
		url  string
	}

	var targets []sweepSource
	if stored, err := p.store.FetchActiveSources(ctx); err == nil && len(stored) > 0 {
		for _, s := range stored {
			targets = append(targets, sweepSource{name: s.Name, url: s.URL})
		}
	} else {
		for _, s := range p.sources {
			targets = append(targets, sweepSource{name: s.Name, url: s.URL})
		}
	}

	var all []models.RawCandidate
	for _, t := range targets {
		items, err := RunIsolated(t.name, func() ([]models.RawCandidate, error) {
			doc, err := p.fetcher.FetchDocument(ctx, t.url)
			if err != nil {
				return nil, err
			}
			if strings.Contains(t.name, "_fb") || strings.Contains(t.url, "facebook") {
				return ExtractSocialEventLinks(doc, t.url, t.name), nil
			}
			return ExtractLinkSweep(doc, t.url, t.name), nil
		})
		if err != nil {
			log.Printf("sweep: source %s failed: %v", t.name, err)
			continue
		}
		all = append(all, items...)
	}

	return MergeByURL(all)
}
