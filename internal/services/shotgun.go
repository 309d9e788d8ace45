package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"marseille-outings-aggregator/internal/models"
)

// pastEventGrace: structured events whose start time is further in the past
// than this are dropped at extraction time.
const pastEventGrace = 2 * time.Hour

const shotgunEventURLPrefix = "https://shotgun.live/fr/events/"

// ShotgunClient queries the Shotgun GraphQL search API, the one structured
// (non-HTML) event source.
type ShotgunClient struct {
	http     *resty.Client
	endpoint string
}

// ShotgunEvent mirrors one event object of the GraphQL search response.
type ShotgunEvent struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	StartDate   string   `json:"startDate"`
	Description string   `json:"description"`
	Location    *struct {
		Name string `json:"name"`
		City string `json:"city"`
	} `json:"location"`
	Categories []string `json:"categories"`
	Image      *struct {
		URL string `json:"url"`
	} `json:"image"`
}

type shotgunResponse struct {
	Data struct {
		Search struct {
			Events []ShotgunEvent `json:"events"`
		} `json:"search"`
	} `json:"data"`
}

// NewShotgunClient creates a client for the given GraphQL endpoint.
func NewShotgunClient(endpoint string, timeout time.Duration) *ShotgunClient {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", browserUserAgent)
	client.SetHeader("Accept", "application/json")
	return &ShotgunClient{http: client, endpoint: endpoint}
}

func searchQuery(query string, limit int) string {
	return fmt.Sprintf(`
		query SearchEvents {
			search(input: {query: %q, types: [EVENT], limit: %d}) {
				events {
					id
					title
					slug
					startDate
					description
					location { name city }
					categories
					image { url }
				}
			}
		}
	`, query, limit)
}

// Search runs the event search and returns the raw event objects.
func (c *ShotgunClient) Search(ctx context.Context, query string, limit int) ([]ShotgunEvent, error) {
	body, err := c.SearchRaw(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	var parsed shotgunResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("shotgun response: %w", err)
	}
	return parsed.Data.Search.Events, nil
}

// SearchRaw runs the event search and returns the untouched response body.
// Used by the pass-through proxy endpoint.
func (c *ShotgunClient) SearchRaw(ctx context.Context, query string, limit int) ([]byte, error) {
	payload := map[string]string{"query": searchQuery(query, limit)}
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("shotgun request: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("shotgun returned status %d", res.StatusCode())
	}
	return res.Body(), nil
}

// ExtractShotgunEvents maps structured API events into raw candidates.
// Events more than two hours in the past are skipped; the source's own
// category labels pass straight through lower-cased; the outbound URL is
// synthesized deterministically from the slug.
func ExtractShotgunEvents(events []ShotgunEvent, sourceName string, now time.Time) []models.RawCandidate {
	var items []models.RawCandidate
	counter := 0

	for _, ev := range events {
		if ev.Slug == "" {
			continue
		}

		var date string
		if ev.StartDate != "" {
			start, err := time.Parse(time.RFC3339, ev.StartDate)
			if err != nil {
				log.Printf("[%s] unparseable startDate %q for %s", sourceName, ev.StartDate, ev.Slug)
			} else {
				if start.Before(now.Add(-pastEventGrace)) {
					continue
				}
				date = start.UTC().Format("2006-01-02")
			}
		}

		var cats []string
		for _, c := range ev.Categories {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				cats = append(cats, c)
			}
		}

		title := models.CleanTitle(ev.Title)
		if title == "" {
			title = "(Sans titre)"
		}

		var image string
		if ev.Image != nil {
			image = ev.Image.URL
		}
		location := models.DefaultLocation
		if ev.Location != nil {
			if ev.Location.Name != "" {
				location = ev.Location.Name
			} else if ev.Location.City != "" {
				location = ev.Location.City
			}
		}

		items = append(items, models.RawCandidate{
			SourceLocalID: fmt.Sprintf("%s_%d", sourceName, counter),
			Title:         title,
			URL:           shotgunEventURLPrefix + ev.Slug,
			Source:        sourceName,
			Categories:    orDefaultCategory(cats),
			Date:          date,
			Image:         image,
			Description:   ev.Description,
			Location:      location,
		})
		counter++
	}

	return items
}
