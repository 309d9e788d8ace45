package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"marseille-outings-aggregator/internal/models"
)

// Scoring weights. Category matches dominate; the recency bonus decays
// linearly across the next week; very long titles are usually low-quality
// scrapes and eat a small penalty.
const (
	categoryMatchWeight = 10
	recencyWindowDays   = 7
	recencyDayWeight    = 5
	farFutureBonus      = 1
	longTitleThreshold  = 100
	longTitlePenalty    = 5
)

// genericTitleWords are whole titles that recur as scraping artifacts
// (navigation labels scraped as events). A title this generic is excluded
// only when it is also very short.
var genericTitleWords = []string{"vidéos", "videos", "café", "bar concert", "concert", "expo"}

// scoredOuting pairs a stored record with its ranking score. Never leaves
// this file; the score is stripped before the response is assembled.
type scoredOuting struct {
	record models.OutingRecord
	score  int
}

// FilterAndScore filters stored events against a preference profile and
// returns the topK survivors ranked by score, best first, plus the total
// number of events that survived the filter before the cut. The sort is
// stable so equally scored events keep their store order.
func FilterAndScore(events []models.OutingRecord, prefs models.PreferenceProfile, topK int, now time.Time) ([]models.OutingRecord, int) {
	prefCats := lowerAll(prefs.PreferredCategories)
	excludeWords := lowerAll(prefs.ExcludeKeywords)

	scored := make([]scoredOuting, 0, len(events))
	for _, ev := range events {
		if excluded(ev, prefCats, excludeWords, prefs) {
			continue
		}
		scored = append(scored, scoredOuting{record: ev, score: score(ev, prefCats, now)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	total := len(scored)
	if topK > total {
		topK = total
	}
	out := make([]models.OutingRecord, 0, topK)
	for _, s := range scored[:topK] {
		out = append(out, s.record)
	}
	return out, total
}

// excluded applies the filter stage: category intersection, exclude
// keywords, generic junk titles, and the price window. Ambiguity is
// permissive: an event without categories or with an unparseable price is
// kept.
func excluded(ev models.OutingRecord, prefCats, excludeWords []string, prefs models.PreferenceProfile) bool {
	evCats := lowerAll(ev.Categories)
	if len(prefCats) > 0 && len(evCats) > 0 && !intersects(prefCats, evCats) {
		return true
	}

	title := strings.ToLower(ev.Title)
	for _, w := range excludeWords {
		if strings.Contains(title, w) {
			return true
		}
	}

	if len(strings.Fields(title)) <= 2 {
		for _, g := range genericTitleWords {
			if title == g {
				return true
			}
		}
	}

	// Lenient price window: parse the numeric prefix, never exclude on a
	// parse failure.
	if ev.Price != nil {
		if price, ok := leadingFloat(*ev.Price); ok {
			if price < prefs.MinPrice || price > prefs.MaxPrice {
				return true
			}
		}
	}

	return false
}

func score(ev models.OutingRecord, prefCats []string, now time.Time) int {
	s := 0

	evCats := lowerAll(ev.Categories)
	for _, pc := range prefCats {
		for _, ec := range evCats {
			if pc == ec {
				s += categoryMatchWeight
				break
			}
		}
	}

	if eventDate, err := time.Parse("2006-01-02", ev.Date); err == nil {
		diffDays := int(eventDate.Sub(truncateToDay(now)).Hours() / 24)
		switch {
		case diffDays >= 0 && diffDays <= recencyWindowDays:
			s += (recencyWindowDays - diffDays) * recencyDayWeight
		case diffDays > recencyWindowDays:
			s += farFutureBonus
		}
	}

	if len([]rune(ev.Title)) > longTitleThreshold {
		s -= longTitlePenalty
	}

	return s
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// leadingFloat parses the numeric prefix of a price string ("15.50€" → 15.5).
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || (end == 0 && s[end] == '-')) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
