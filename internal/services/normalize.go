package services

import (
	"log"
	"time"

	"marseille-outings-aggregator/internal/models"
)

// MergeByURL collapses candidates into one entry per distinct URL.
// Last occurrence wins: the input is iterated in pipeline order and a later
// candidate overwrites an earlier one sharing the URL, so the orchestrator's
// configured source order decides which source's fields survive. The output
// keeps first-occurrence positions, which makes the merge deterministic for
// a fixed input order. Candidates without a URL are dropped here as a guard;
// extractors should never emit them.
func MergeByURL(candidates []models.RawCandidate) []models.RawCandidate {
	merged := make([]models.RawCandidate, 0, len(candidates))
	index := make(map[string]int, len(candidates))

	for _, c := range candidates {
		if c.URL == "" {
			continue
		}
		if at, ok := index[c.URL]; ok {
			merged[at] = c
			continue
		}
		index[c.URL] = len(merged)
		merged = append(merged, c)
	}
	return merged
}

// NormalizeCandidate converts a merged candidate into the persisted row
// shape, applying truncation, defaults and the tomorrow backfill for
// unparseable dates. Returns nil for candidates that cannot form a valid row
// (missing URL or empty title after cleanup); the caller drops and counts
// them.
func NormalizeCandidate(c models.RawCandidate, now time.Time) *models.OutingRecord {
	if !models.IsValidURL(c.URL) {
		log.Printf("normalize: dropping candidate with unusable URL %q (source %s)", c.URL, c.Source)
		return nil
	}
	title := models.CleanTitle(c.Title)
	if title == "" {
		log.Printf("normalize: dropping untitled candidate %s", c.URL)
		return nil
	}

	date, ok := models.NormalizeDate(c.Date)
	if !ok {
		// The date column is NOT NULL; unparseable dates get a near-future
		// placeholder rather than a past or arbitrary one.
		date = models.Tomorrow(now)
	}

	categories := c.Categories
	if categories == nil {
		categories = []string{}
	}

	location := c.Location
	if location == "" {
		location = models.DefaultLocation
	}

	return &models.OutingRecord{
		ID:          models.NewOutingID(),
		URL:         c.URL,
		Title:       models.Truncate(title, models.MaxTitleLen),
		Source:      models.Truncate(c.Source, models.MaxSourceLen),
		Categories:  categories,
		Date:        date,
		Image:       models.NullableString(c.Image),
		Description: models.NullableString(models.Truncate(c.Description, models.MaxDescriptionLen)),
		Location:    location,
		Price:       models.NullableString(c.Price),
		LastSeen:    now.UTC().Format(time.RFC3339),
	}
}

// NormalizeBatch runs NormalizeCandidate over a merged list, dropping nils.
func NormalizeBatch(candidates []models.RawCandidate, now time.Time) []models.OutingRecord {
	rows := make([]models.OutingRecord, 0, len(candidates))
	for _, c := range candidates {
		if row := NormalizeCandidate(c, now); row != nil {
			rows = append(rows, *row)
		}
	}
	return rows
}
