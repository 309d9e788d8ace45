package services

import (
	"context"
	"strings"
	"time"

	"marseille-outings-aggregator/internal/models"
)

// Enricher fills missing image/description fields from a candidate's own
// detail page. Strictly best-effort: every failure mode (fetch error,
// timeout, unparseable page) returns the candidate untouched.
type Enricher struct {
	fetcher *PageFetcher
}

// NewEnricher creates an enricher sharing the pipeline's page fetcher.
func NewEnricher(fetcher *PageFetcher) *Enricher {
	return &Enricher{fetcher: fetcher}
}

// Enrich fetches the candidate's detail page within timeout and fills
// image/description from page metadata. Fields an extractor already supplied
// are never overwritten.
func (e *Enricher) Enrich(ctx context.Context, c models.RawCandidate, timeout time.Duration) models.RawCandidate {
	if c.Image != "" && c.Description != "" {
		return c
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	doc, err := e.fetcher.FetchDocument(ctx, c.URL)
	if err != nil {
		return c
	}

	if c.Image == "" {
		if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && content != "" {
			c.Image = content
		}
	}
	if c.Description == "" {
		if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok && content != "" {
			c.Description = models.Truncate(content, models.ExtractDescriptionLen)
		}
	}

	if c.Image == "" {
		img := doc.Find("article img").First()
		if src, ok := img.Attr("src"); ok && src != "" {
			c.Image = src
		} else if src, ok := img.Attr("data-src"); ok && src != "" {
			c.Image = src
		}
	}
	if c.Description == "" {
		if txt := strings.TrimSpace(doc.Find("article p").First().Text()); txt != "" {
			c.Description = models.Truncate(txt, models.ExtractDescriptionLen)
		}
	}

	return c
}
