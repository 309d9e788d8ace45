package services

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marseille-outings-aggregator/internal/models"
)

// ExtractFunc turns a parsed source page into raw candidates. Implementations
// never return partial errors: a malformed item is skipped, a hopeless
// document yields an empty slice.
type ExtractFunc func(doc *goquery.Document, pageURL, sourceName string) []models.RawCandidate

// Source binds a configured source to its extraction heuristic. The order of
// the registry is load-bearing: the merge step is last-write-wins by URL, so
// later sources override earlier ones for shared URLs.
type Source struct {
	Name    string
	URL     string
	Extract ExtractFunc
}

// DefaultSources returns the configured scrape registry in merge-priority
// order (shotgun is queried separately and always comes first).
func DefaultSources() []Source {
	return []Source{
		{Name: "tarpin-bien", URL: "https://tarpin-bien.com/", Extract: ExtractBlogPosts},
		{Name: "sortiramarseille", URL: "https://sortiramarseille.fr/soirees-marseille", Extract: ExtractEventCards},
		{Name: "marseille-tourisme", URL: "https://www.marseille-tourisme.com/agenda/", Extract: ExtractEventCards},
	}
}

// categoryKeywords maps a category tag to the lower-cased substrings that
// imply it, tested against titles and structured category labels.
var categoryKeywords = []struct {
	tag      string
	keywords []string
}{
	{models.CategoryConcert, []string{"concert", "musique", "dj"}},
	{models.CategoryExpo, []string{"expo", "exposition", "vernissage", "art"}},
	{models.CategorySoiree, []string{"soirée", "soiree", "club", "night"}},
	{models.CategorySpectacle, []string{"spectacle", "théâtre", "theatre"}},
}

// titleDenylist suppresses cookie banners and policy notices that often sit
// inside the same markup as real posts.
var titleDenylist = []string{"cookie", "politique"}

func deniedTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, word := range titleDenylist {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// categorizeText runs the keyword heuristic over free text (typically a
// title). Returns nil when nothing matches.
func categorizeText(text string) []string {
	lower := strings.ToLower(text)
	var cats []string
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				cats = append(cats, group.tag)
				break
			}
		}
	}
	return cats
}

// categorizeLabels maps structured category labels (WordPress category links
// and the like) through the same keyword groups.
func categorizeLabels(labels []string) []string {
	var cats []string
	for _, label := range labels {
		cats = append(cats, categorizeText(label)...)
	}
	return dedupeStrings(cats)
}

// orDefaultCategory substitutes the default tag for an empty category list so
// unmatched candidates are kept rather than dropped.
func orDefaultCategory(cats []string) []string {
	if len(cats) == 0 {
		return []string{models.DefaultCategory}
	}
	return dedupeStrings(cats)
}

func dedupeStrings(in []string) []string {
	if len(in) <= 1 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// resolveURL resolves href against the page URL. Returns "" when the href is
// unusable.
func resolveURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// trivialHref rejects fragments, script links, comment anchors and category
// index links during the link-discovery fallback.
func trivialHref(href string) bool {
	return len(href) <= 10 ||
		strings.Contains(href, "#") ||
		strings.Contains(href, "javascript") ||
		strings.Contains(href, "comment") ||
		strings.Contains(href, "/category/")
}

// findItemLink implements the shared link-discovery chain: an anchor nested
// in the title element, then a title-link class, then the first non-trivial
// anchor in the block.
func findItemLink(item, titleEl *goquery.Selection) string {
	if titleEl != nil {
		if href, ok := titleEl.Find("a[href]").First().Attr("href"); ok && href != "" {
			return href
		}
	}

	if href, ok := item.Find(".entry-title-link, .post-title-link, h2 a[href]").First().Attr("href"); ok && href != "" {
		return href
	}

	var found string
	item.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if trivialHref(href) {
			return true
		}
		found = href
		return false
	})
	return found
}

// firstImage extracts an image URL from the prioritized selector, falling
// back to the first img in the block, resolved against the page URL.
func firstImage(item *goquery.Selection, pageURL, preferred string) string {
	img := item.Find(preferred).First()
	if img.Length() == 0 {
		img = item.Find("img").First()
	}
	if img.Length() == 0 {
		return ""
	}
	src, ok := img.Attr("src")
	if !ok || src == "" {
		src, _ = img.Attr("data-src")
	}
	return resolveURL(pageURL, src)
}
