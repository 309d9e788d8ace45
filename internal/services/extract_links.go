package services

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marseille-outings-aggregator/internal/models"
)

var (
	isoInTextRe   = regexp.MustCompile(`20\d{2}-\d{2}-\d{2}`)
	slashDateRe   = regexp.MustCompile(`\d{1,2}[/.\-]\d{1,2}[/.\-](?:20)?\d{2}`)
	electroSweep  = []string{"electro", "dj", "concert"}
	expoSweep     = []string{"expo", "vernissage", "exposition"}
)

// sweepDate pulls an embeddable date out of free text: ISO first, then a
// numeric day/month/year form left for the normalizer to interpret.
func sweepDate(text string) string {
	if m := isoInTextRe.FindString(text); m != "" {
		return m
	}
	return slashDateRe.FindString(text)
}

// ExtractLinkSweep is the generic fallback for unconfigured sources: scan
// every anchor, keep only those whose text matches the lightweight
// electro/expo keyword gate, and discard everything else. Deliberately
// low-recall; it exists so an unknown source produces something rather than
// nothing.
func ExtractLinkSweep(doc *goquery.Document, pageURL, sourceName string) []models.RawCandidate {
	var items []models.RawCandidate
	counter := 0
	seen := make(map[string]bool)

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		title := models.CleanTitle(a.Text())
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" || seen[href] {
			return
		}

		lower := strings.ToLower(title)
		var cats []string
		if containsAny(lower, electroSweep) {
			cats = append(cats, models.CategoryElectro)
		}
		if containsAny(lower, expoSweep) {
			cats = append(cats, models.CategoryExpo)
		}
		if len(cats) == 0 {
			return
		}
		seen[href] = true

		fullURL := resolveURL(pageURL, href)
		if fullURL == "" {
			return
		}

		items = append(items, models.RawCandidate{
			SourceLocalID: fmt.Sprintf("%s_%d", sourceName, counter),
			Title:         title,
			URL:           fullURL,
			Source:        sourceName,
			Categories:    cats,
			Date:          sweepDate(title),
		})
		counter++
	})

	log.Printf("[%s] swept %d candidate anchors from %s", sourceName, len(items), pageURL)
	return items
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
