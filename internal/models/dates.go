package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// frenchMonths maps lower-cased French month names to their number.
var frenchMonths = map[string]time.Month{
	"janvier":   time.January,
	"février":   time.February,
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juin":      time.June,
	"juillet":   time.July,
	"août":      time.August,
	"septembre": time.September,
	"octobre":   time.October,
	"novembre":  time.November,
	"décembre":  time.December,
}

var (
	isoPrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	longFormRe  = regexp.MustCompile(`(\d{1,2})\s+([\p{L}]+)\s+(\d{4})`)
	// Stray connective words that leak out of date selectors ("Le 12 mars"
	// split badly). Not worth feeding to a parser.
	connectiveRe = regexp.MustCompile(`^(?i)(le|la|du|au|à|et)$`)
)

// generalLayouts are tried in order as a last resort for free-text dates.
var generalLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"02-01-2006",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// NormalizeDate parses heterogeneous date text into canonical YYYY-MM-DD.
// The second return is false when the text could not be parsed; callers must
// then supply their own default. Never panics regardless of input.
//
// Priority order: ISO prefix, French long form ("15 mars 2024"), junk
// short-circuit, general layout sweep.
func NormalizeDate(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", false
	}

	// Already ISO (date or full timestamp): validate the date portion and
	// return just it.
	if isoPrefixRe.MatchString(cleaned) {
		if _, err := time.Parse("2006-01-02", cleaned[:10]); err != nil {
			return "", false
		}
		return cleaned[:10], true
	}

	// French long form: <day> <month-name> <year>.
	if m := longFormRe.FindStringSubmatch(cleaned); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		month, known := frenchMonths[strings.ToLower(m[2])]
		if known && day >= 1 && day <= 31 && year > 2000 && year < 2100 {
			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			return d.Format("2006-01-02"), true
		}
	}

	// Obvious junk: too short, or a stray connective word on its own.
	if utf8.RuneCountInString(cleaned) < 8 || connectiveRe.MatchString(cleaned) {
		return "", false
	}

	for _, layout := range generalLayouts {
		if d, err := time.Parse(layout, cleaned); err == nil {
			return d.Format("2006-01-02"), true
		}
	}

	return "", false
}
