package services

import (
	"testing"
	"time"

	"marseille-outings-aggregator/internal/models"
)

var scoringNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func prefsWith(cats ...string) models.PreferenceProfile {
	return models.PreferenceProfile{
		PreferredCategories: cats,
		MinPrice:            0,
		MaxPrice:            100,
	}
}

func TestFilterAndScoreRanksByCategoryMatch(t *testing.T) {
	events := []models.OutingRecord{
		{URL: "u1", Title: "Théâtre", Categories: []string{"spectacle"}, Date: "2025-03-20"},
		{URL: "u2", Title: "Concert électro", Categories: []string{"concert", "electro"}, Date: "2025-03-20"},
		{URL: "u3", Title: "Concert", Categories: []string{"concert"}, Date: "2025-03-20"},
	}
	prefs := prefsWith("concert", "electro", "spectacle")

	top, _ := FilterAndScore(events, prefs, 3, scoringNow)
	if len(top) != 3 {
		t.Fatalf("got %d results, want 3", len(top))
	}
	if top[0].URL != "u2" {
		t.Errorf("top result %q, want the double category match", top[0].URL)
	}
}

func TestFilterAndScoreRecency(t *testing.T) {
	events := []models.OutingRecord{
		{URL: "far", Title: "A", Categories: []string{"concert"}, Date: "2025-06-01"},
		{URL: "today", Title: "B", Categories: []string{"concert"}, Date: "2025-03-14"},
		{URL: "nextweek", Title: "C", Categories: []string{"concert"}, Date: "2025-03-18"},
	}

	top, _ := FilterAndScore(events, prefsWith("concert"), 3, scoringNow)
	if top[0].URL != "today" || top[1].URL != "nextweek" || top[2].URL != "far" {
		t.Errorf("recency order wrong: %s, %s, %s", top[0].URL, top[1].URL, top[2].URL)
	}
}

func TestFilterAndScoreLongTitlePenalty(t *testing.T) {
	long := make([]rune, 120)
	for i := range long {
		long[i] = 'a'
	}
	events := []models.OutingRecord{
		{URL: "long", Title: string(long), Categories: []string{"concert"}, Date: "2025-03-20"},
		{URL: "short", Title: "Concert sympa", Categories: []string{"concert"}, Date: "2025-03-20"},
	}

	top, _ := FilterAndScore(events, prefsWith("concert"), 2, scoringNow)
	if top[0].URL != "short" {
		t.Errorf("top result %q, want the short title", top[0].URL)
	}
}

func TestFilterAndScoreExclusions(t *testing.T) {
	price := "150€"
	events := []models.OutingRecord{
		{URL: "kids", Title: "Atelier enfant", Categories: []string{"concert"}, Date: "2025-03-20"},
		{URL: "wrongcat", Title: "Opéra", Categories: []string{"opera"}, Date: "2025-03-20"},
		{URL: "generic", Title: "Expo", Categories: []string{"expo"}, Date: "2025-03-20"},
		{URL: "pricey", Title: "Gala", Categories: []string{"concert"}, Date: "2025-03-20", Price: &price},
		{URL: "keep", Title: "Concert au Molotov", Categories: []string{"concert"}, Date: "2025-03-20"},
	}
	prefs := models.PreferenceProfile{
		PreferredCategories: []string{"concert", "expo"},
		MinPrice:            0,
		MaxPrice:            100,
		ExcludeKeywords:     []string{"enfant"},
	}

	top, total := FilterAndScore(events, prefs, 10, scoringNow)
	if len(top) != 1 || top[0].URL != "keep" {
		t.Fatalf("got %+v, want only the keep event", urls(top))
	}
	if total != 1 {
		t.Errorf("total = %d, excluded events must not count", total)
	}
}

func TestFilterAndScorePermissiveOnAmbiguity(t *testing.T) {
	weird := "prix libre"
	events := []models.OutingRecord{
		{URL: "nocats", Title: "Mystère", Categories: []string{}, Date: "2025-03-20"},
		{URL: "badprice", Title: "Concert", Categories: []string{"concert"}, Date: "2025-03-20", Price: &weird},
		{URL: "baddate", Title: "Soirée elsewhere", Categories: []string{"soiree"}, Date: "pas une date"},
	}
	prefs := prefsWith("concert", "soiree")

	top, _ := FilterAndScore(events, prefs, 10, scoringNow)
	if len(top) != 3 {
		t.Fatalf("ambiguous events were excluded: kept %v", urls(top))
	}
}

func TestFilterAndScoreTopK(t *testing.T) {
	var events []models.OutingRecord
	for i := 0; i < 20; i++ {
		events = append(events, models.OutingRecord{
			URL: "u", Title: "Concert", Categories: []string{"concert"}, Date: "2025-03-20",
		})
	}
	top, total := FilterAndScore(events, prefsWith("concert"), 5, scoringNow)
	if len(top) != 5 {
		t.Errorf("got %d, want 5", len(top))
	}
	if total != 20 {
		t.Errorf("total = %d, want the full survivor count before the cut", total)
	}
	if got, total := FilterAndScore(events[:2], prefsWith("concert"), 5, scoringNow); len(got) != 2 || total != 2 {
		t.Errorf("topK above population returned %d/%d, want 2/2", len(got), total)
	}
}

func TestFilterAndScoreStable(t *testing.T) {
	events := []models.OutingRecord{
		{URL: "first", Title: "Concert", Categories: []string{"concert"}, Date: "2025-03-20"},
		{URL: "second", Title: "Concert", Categories: []string{"concert"}, Date: "2025-03-20"},
	}
	top, _ := FilterAndScore(events, prefsWith("concert"), 2, scoringNow)
	if top[0].URL != "first" || top[1].URL != "second" {
		t.Errorf("equal scores reordered: %v", urls(top))
	}
}

func TestLeadingFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"15.50€", 15.5, true},
		{"10", 10, true},
		{" 8€ ", 8, true},
		{"gratuit", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := leadingFloat(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("leadingFloat(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func urls(rows []models.OutingRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.URL
	}
	return out
}
