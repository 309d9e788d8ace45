package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marseille-outings-aggregator/internal/models"
)

// agendaFallbackLimit bounds the anchor sweep used when no card blocks match
// at all (layout change, empty listing page).
const agendaFallbackLimit = 20

// ExtractEventCards handles generic card/listing layouts: agenda grids with
// one block per event and a heading plus date/image/venue markup inside it.
// When the page yields zero card blocks it falls back to sweeping agenda-ish
// anchors so a redesigned listing still produces minimal candidates.
func ExtractEventCards(doc *goquery.Document, pageURL, sourceName string) []models.RawCandidate {
	var items []models.RawCandidate
	counter := 0
	seen := make(map[string]bool)

	cards := doc.Find(".event, .agenda-item, .event-card, .sortie, .item, article")
	log.Printf("[%s] found %d event blocks", sourceName, cards.Length())

	cards.Each(func(_ int, card *goquery.Selection) {
		titleEl := card.Find("h2, h3, .event-title, .title, .post-title").First()
		title := models.CleanTitle(titleEl.Text())
		if len([]rune(title)) < 3 || deniedTitle(title) {
			return
		}

		href := findItemLink(card, titleEl)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		fullURL := resolveURL(pageURL, href)
		if fullURL == "" {
			return
		}

		var date string
		if dt, ok := card.Find("time[datetime]").First().Attr("datetime"); ok {
			date = dt
		} else {
			date = strings.TrimSpace(card.Find(".event-date, .date, .agenda-date, .day").First().Text())
		}

		image := firstImage(card, pageURL, "img")

		description := models.Truncate(
			strings.TrimSpace(card.Find(".event-description, .description, .excerpt, p").First().Text()),
			models.ExtractDescriptionLen)

		location := strings.TrimSpace(card.Find(".event-location, .location, .venue, .place").First().Text())
		if location == "" {
			location = models.DefaultLocation
		}

		items = append(items, models.RawCandidate{
			SourceLocalID: fmt.Sprintf("%s_%d", sourceName, counter),
			Title:         models.Truncate(title, models.MaxTitleLen),
			URL:           fullURL,
			Source:        sourceName,
			Categories:    orDefaultCategory(categorizeText(title)),
			Date:          date,
			Image:         image,
			Description:   description,
			Location:      location,
		})
		counter++
	})

	// Layout miss: sweep agenda-flavored anchors for bare candidates.
	if len(items) == 0 {
		doc.Find(`a[href*="agenda"], a[href*="sortir"], a[href*="event"], a[href*="vivez-marseille"]`).
			EachWithBreak(func(_ int, a *goquery.Selection) bool {
				if len(items) >= agendaFallbackLimit {
					return false
				}
				href, _ := a.Attr("href")
				title := models.CleanTitle(a.Text())
				if href == "" || len([]rune(title)) < 3 || seen[href] || deniedTitle(title) {
					return true
				}
				seen[href] = true
				fullURL := resolveURL(pageURL, href)
				if fullURL == "" {
					return true
				}
				items = append(items, models.RawCandidate{
					SourceLocalID: fmt.Sprintf("%s_%d", sourceName, counter),
					Title:         models.Truncate(title, models.MaxTitleLen),
					URL:           fullURL,
					Source:        sourceName,
					Categories:    []string{models.DefaultCategory},
					Location:      models.DefaultLocation,
				})
				counter++
				return true
			})
	}

	log.Printf("[%s] parsed %d items from %s", sourceName, len(items), pageURL)
	return items
}
