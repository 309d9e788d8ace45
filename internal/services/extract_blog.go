package services

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marseille-outings-aggregator/internal/models"
)

var longFormDateRe = regexp.MustCompile(`\d{1,2}\s+\p{L}+\s+\d{4}`)

// ExtractBlogPosts handles templated WordPress blog layouts (Divi theme and
// close relatives). Each post block carries a heading, an entry link, and
// assorted date/image/excerpt markup in semi-predictable places.
func ExtractBlogPosts(doc *goquery.Document, pageURL, sourceName string) []models.RawCandidate {
	var items []models.RawCandidate
	counter := 0
	seen := make(map[string]bool)

	posts := doc.Find(".et_pb_post, article.post, .post-container article")
	log.Printf("[%s] found %d post blocks", sourceName, posts.Length())

	posts.Each(func(_ int, post *goquery.Selection) {
		titleEl := post.Find("h2.entry-title").First()
		if titleEl.Length() == 0 {
			titleEl = post.Find("h2").First()
		}
		title := models.CleanTitle(titleEl.Text())
		if len([]rune(title)) < 3 || deniedTitle(title) {
			return
		}

		href := findItemLink(post, titleEl)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		fullURL := resolveURL(pageURL, href)
		if fullURL == "" {
			return
		}

		// Date hunting, most to least structured: time[datetime], the
		// published/posted-on spans, then a long-form date inside the
		// entry meta text.
		var date string
		if dt, ok := post.Find("time[datetime]").First().Attr("datetime"); ok {
			date = dt
		}
		if date == "" {
			pub := post.Find(".published, .posted-on, .entry-date").First()
			if pub.Length() > 0 {
				if dt, ok := pub.Attr("datetime"); ok && dt != "" {
					date = dt
				} else {
					date = strings.TrimSpace(pub.Text())
				}
			}
		}
		if date == "" {
			meta := post.Find(".entry-meta, .post-meta").First()
			if meta.Length() > 0 {
				date = longFormDateRe.FindString(meta.Text())
			}
		}

		image := firstImage(post, pageURL, ".entry-featured-image-url, figure img, .et_pb_image img")

		var description string
		if p := post.Find(".entry-content, .post-content").First().Find("p").First(); p.Length() > 0 {
			description = strings.TrimSpace(p.Text())
		}
		if description == "" {
			description = strings.TrimSpace(post.Find(".excerpt, .post-excerpt").First().Text())
		}
		description = models.Truncate(description, models.ExtractDescriptionLen)

		var location string
		loc := post.Find("[data-location], .location, .venue, .event-location").First()
		if loc.Length() > 0 {
			if v, ok := loc.Attr("data-location"); ok && v != "" {
				location = v
			} else {
				location = strings.TrimSpace(loc.Text())
			}
		}
		if location == "" {
			location = models.DefaultLocation
		}

		// Prefer the structured WordPress category labels, fall back to the
		// title keyword heuristic.
		var labels []string
		post.Find(`a[rel*="category"], .cat-links a`).Each(func(_ int, a *goquery.Selection) {
			labels = append(labels, a.Text())
		})
		cats := categorizeLabels(labels)
		if len(cats) == 0 {
			cats = categorizeText(title)
		}

		items = append(items, models.RawCandidate{
			SourceLocalID: fmt.Sprintf("%s_%d", sourceName, counter),
			Title:         models.Truncate(title, models.MaxTitleLen),
			URL:           fullURL,
			Source:        sourceName,
			Categories:    orDefaultCategory(cats),
			Date:          date,
			Image:         image,
			Description:   description,
			Location:      location,
		})
		counter++
	})

	log.Printf("[%s] parsed %d items from %s", sourceName, len(items), pageURL)
	return items
}
