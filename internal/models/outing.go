package models

import "time"

// RawCandidate is an unvalidated event produced by a single extractor pass.
// The URL is the natural key carried through merge and normalization; fields
// that a source could not supply are left empty. Candidates never outlive the
// pipeline run that produced them.
type RawCandidate struct {
	SourceLocalID string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Source        string   `json:"source"`
	Categories    []string `json:"categories"`
	Date          string   `json:"date,omitempty"`
	Image         string   `json:"image,omitempty"`
	Description   string   `json:"description,omitempty"`
	Location      string   `json:"location,omitempty"`
	Organizer     string   `json:"organizer,omitempty"`
	Price         string   `json:"price,omitempty"`
}

// OutingRecord is the persisted row shape of the outings table. Exactly one
// record exists per distinct URL; a later run with the same URL replaces the
// mutable fields through the upsert, it never creates a second row.
type OutingRecord struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	Categories  []string `json:"categories"`
	Date        string   `json:"date"` // ISO YYYY-MM-DD, never empty (backfilled)
	Image       *string  `json:"image"`
	Description *string  `json:"description"`
	Location    string   `json:"location"`
	Price       *string  `json:"price,omitempty"`
	LastSeen    string   `json:"last_seen"`
}

// PreferenceProfile is a user's stored filtering and ranking configuration.
// Read-only to this service.
type PreferenceProfile struct {
	UserID              string   `json:"user_id,omitempty"`
	PreferredCategories []string `json:"preferred_categories"`
	MinPrice            float64  `json:"min_price"`
	MaxPrice            float64  `json:"max_price"`
	ExcludeKeywords     []string `json:"exclude_keywords"`
}

// ScrapeSource is a row of the scrape_sources table (dynamic source list).
type ScrapeSource struct {
	Name string `json:"source"`
	URL  string `json:"url"`
}

// Field limits enforced at normalization time.
const (
	MaxTitleLen       = 255
	MaxSourceLen      = 50
	MaxDescriptionLen = 500

	// Extractors pre-cap descriptions to bound memory before enrichment;
	// the full limit applies later in normalization.
	ExtractDescriptionLen = 300
)

// DefaultLocation is substituted when a source supplies no venue at all.
const DefaultLocation = "Marseille"

// DefaultCategory tags candidates that match no keyword group rather than
// dropping them.
const DefaultCategory = "event"

// Category tags produced by the keyword heuristic.
const (
	CategoryConcert   = "concert"
	CategoryExpo      = "expo"
	CategorySoiree    = "soiree"
	CategorySpectacle = "spectacle"
	CategoryElectro   = "electro"
)

// DefaultPreferences is the profile applied when a user has none stored.
// Documented fallback, not an implicit literal: broad nightlife categories,
// an effectively open price range and family-oriented keywords excluded.
func DefaultPreferences() PreferenceProfile {
	return PreferenceProfile{
		PreferredCategories: []string{CategoryConcert, CategorySoiree, CategoryElectro, CategoryExpo},
		MinPrice:            0,
		MaxPrice:            1000,
		ExcludeKeywords:     []string{"enfant", "jeune public", "famille", "kids"},
	}
}

// NullableString maps "" to SQL NULL for the persisted row shape.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Tomorrow returns the date portion of now + 1 day. Used as the backfill for
// candidates whose date text could not be parsed (the outings.date column is
// NOT NULL).
func Tomorrow(now time.Time) string {
	return now.AddDate(0, 0, 1).Format("2006-01-02")
}
