package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marseille-outings-aggregator/internal/models"
)

// PlaceholderSocialTitle is used when a social event link carries neither
// text nor an accessibility label.
const PlaceholderSocialTitle = "Événement (source non précisée)"

// ExtractSocialEventLinks handles social-network event listings where the
// only reliable structure is the anchor itself: keep anchors whose href
// contains an events path marker, derive the title from the link text or its
// aria-label, and scan nearby text for a date.
func ExtractSocialEventLinks(doc *goquery.Document, pageURL, sourceName string) []models.RawCandidate {
	var items []models.RawCandidate
	counter := 0
	seen := make(map[string]bool)

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		if !strings.Contains(href, "/events") && !strings.Contains(strings.ToLower(href), "events") {
			return
		}
		seen[href] = true

		fullURL := resolveURL(pageURL, href)
		if fullURL == "" {
			return
		}

		title := models.CleanTitle(a.Text())
		if title == "" {
			aria, _ := a.Attr("aria-label")
			title = models.CleanTitle(aria)
		}
		if title == "" {
			title = PlaceholderSocialTitle
		}

		// Dates on these pages live in the surrounding text, not the anchor.
		var date string
		if parent := a.Parent(); parent.Length() > 0 {
			date = sweepDate(parent.Text())
		}

		items = append(items, models.RawCandidate{
			SourceLocalID: fmt.Sprintf("%s_%d", sourceName, counter),
			Title:         title,
			URL:           fullURL,
			Source:        sourceName,
			Categories:    []string{"music"},
			Date:          date,
		})
		counter++
	})

	log.Printf("[%s] parsed %d event links from %s", sourceName, len(items), pageURL)
	return items
}
