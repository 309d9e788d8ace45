package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"marseille-outings-aggregator/internal/models"
)

// ErrMissingCredentials marks the proactive skip applied to every store call
// when no service credential is configured. Reported as "no_service_key" in
// pipeline error maps.
var ErrMissingCredentials = errors.New("no_service_key")

// StoreClient talks to the relational store's REST boundary (PostgREST
// dialect): upsert-by-conflict-key and select-with-filter over plain HTTP,
// authenticated with a service-role credential.
type StoreClient struct {
	http       *resty.Client
	baseURL    string
	serviceKey string
}

// OutingQuery narrows a FetchOutings select.
type OutingQuery struct {
	FromDate string // inclusive lower bound on date, e.g. "2025-01-31"
	Limit    int
	OrderAsc bool // order=date.asc when set
}

// NewStoreClient creates a store client. Empty credentials produce a client
// whose calls all fail fast with ErrMissingCredentials; callers surface that
// as a reported skip, not a crash.
func NewStoreClient(baseURL, serviceKey string, timeout time.Duration) *StoreClient {
	client := resty.New()
	client.SetTimeout(timeout)
	if serviceKey != "" {
		client.SetHeader("apikey", serviceKey)
		client.SetHeader("Authorization", "Bearer "+serviceKey)
	}
	return &StoreClient{
		http:       client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
	}
}

// Enabled reports whether the client has a credential to work with.
func (s *StoreClient) Enabled() bool {
	return s.baseURL != "" && s.serviceKey != ""
}

// UpsertOutings writes the batch in one call, keyed on the url unique
// constraint: existing rows have their mutable fields replaced, new rows are
// inserted. Returns the representation rows the store echoes back. The batch
// succeeds or fails wholesale; there is no per-row retry.
func (s *StoreClient) UpsertOutings(ctx context.Context, rows []models.OutingRecord) ([]models.OutingRecord, error) {
	if !s.Enabled() {
		return nil, ErrMissingCredentials
	}
	if len(rows) == 0 {
		return nil, nil
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "resolution=merge-duplicates, return=representation").
		SetQueryParam("on_conflict", "url").
		SetBody(rows).
		Post(s.baseURL + "/rest/v1/outings")
	if err != nil {
		return nil, fmt.Errorf("upsert outings: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("upsert outings: status %d: %s", res.StatusCode(), res.String())
	}

	var returned []models.OutingRecord
	if err := json.Unmarshal(res.Body(), &returned); err != nil {
		return nil, fmt.Errorf("upsert outings: decode representation: %w", err)
	}
	return returned, nil
}

// FetchOutings selects stored rows matching the query.
func (s *StoreClient) FetchOutings(ctx context.Context, q OutingQuery) ([]models.OutingRecord, error) {
	if !s.Enabled() {
		return nil, ErrMissingCredentials
	}

	req := s.http.R().SetContext(ctx).SetQueryParam("select", "*")
	if q.FromDate != "" {
		req.SetQueryParam("date", "gte."+q.FromDate)
	}
	if q.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(q.Limit))
	}
	if q.OrderAsc {
		req.SetQueryParam("order", "date.asc")
	}

	res, err := req.Get(s.baseURL + "/rest/v1/outings")
	if err != nil {
		return nil, fmt.Errorf("fetch outings: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("fetch outings: status %d", res.StatusCode())
	}

	var rows []models.OutingRecord
	if err := json.Unmarshal(res.Body(), &rows); err != nil {
		return nil, fmt.Errorf("fetch outings: decode: %w", err)
	}
	return rows, nil
}

// FetchPreferences returns the stored preference profile for a user, or nil
// when none exists (callers substitute models.DefaultPreferences).
func (s *StoreClient) FetchPreferences(ctx context.Context, userID string) (*models.PreferenceProfile, error) {
	if !s.Enabled() {
		return nil, ErrMissingCredentials
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", "eq."+userID).
		SetQueryParam("select", "*").
		Get(s.baseURL + "/rest/v1/user_preferences")
	if err != nil {
		return nil, fmt.Errorf("fetch preferences: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("fetch preferences: status %d", res.StatusCode())
	}

	var profiles []models.PreferenceProfile
	if err := json.Unmarshal(res.Body(), &profiles); err != nil {
		return nil, fmt.Errorf("fetch preferences: decode: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// FetchActiveSources returns the enabled rows of the scrape_sources table.
// Used by the debug sweep to honor a dynamically managed source list.
func (s *StoreClient) FetchActiveSources(ctx context.Context) ([]models.ScrapeSource, error) {
	if !s.Enabled() {
		return nil, ErrMissingCredentials
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("enabled", "eq.true").
		SetQueryParam("select", "source,url").
		Get(s.baseURL + "/rest/v1/scrape_sources")
	if err != nil {
		return nil, fmt.Errorf("fetch sources: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("fetch sources: status %d", res.StatusCode())
	}

	var sources []models.ScrapeSource
	if err := json.Unmarshal(res.Body(), &sources); err != nil {
		return nil, fmt.Errorf("fetch sources: decode: %w", err)
	}
	return sources, nil
}
