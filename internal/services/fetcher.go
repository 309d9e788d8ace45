package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// PageFetcher retrieves source pages and parses them into queryable
// documents. One shared resty client with a hard timeout; callers that need a
// tighter bound (the enricher) pass a context deadline instead.
type PageFetcher struct {
	http *resty.Client
}

// NewPageFetcher creates a fetcher with a shared HTTP client.
func NewPageFetcher(timeout time.Duration) *PageFetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", browserUserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	return &PageFetcher{http: client}
}

// FetchDocument downloads url and parses the body into a goquery document.
func (f *PageFetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := f.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("fetch %s: status %d", url, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}
