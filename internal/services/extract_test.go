package services

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"marseille-outings-aggregator/internal/models"
)

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

const blogFixture = `
<html><body>
<article class="et_pb_post">
  <h2 class="entry-title"><a href="/concert-molotov">Concert électro au Molotov</a></h2>
  <p class="entry-meta"><span class="published">15 mars 2025</span></p>
  <img class="entry-featured-image-url" src="/img/molotov.jpg">
  <div class="entry-content"><p>Une soirée électro au Molotov avec trois DJs.</p></div>
  <a rel="category tag" href="/category/concerts">Concerts</a>
</article>
<article class="et_pb_post">
  <h2 class="entry-title"><a href="/politique-cookies">Politique de cookies</a></h2>
</article>
<article class="et_pb_post">
  <h2 class="entry-title"><a href="/concert-molotov">Concert électro au Molotov (bis)</a></h2>
</article>
</body></html>`

func TestExtractBlogPosts(t *testing.T) {
	doc := docFromString(t, blogFixture)
	items := ExtractBlogPosts(doc, "https://tarpin-bien.com/", "tarpin-bien")

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (denylist and duplicate URL filtered)", len(items))
	}
	item := items[0]
	if item.URL != "https://tarpin-bien.com/concert-molotov" {
		t.Errorf("URL = %q", item.URL)
	}
	if item.Title != "Concert électro au Molotov" {
		t.Errorf("Title = %q", item.Title)
	}
	if item.Date != "15 mars 2025" {
		t.Errorf("Date = %q", item.Date)
	}
	if item.Image != "https://tarpin-bien.com/img/molotov.jpg" {
		t.Errorf("Image = %q", item.Image)
	}
	if !strings.HasPrefix(item.Description, "Une soirée électro") {
		t.Errorf("Description = %q", item.Description)
	}
	if item.Source != "tarpin-bien" {
		t.Errorf("Source = %q", item.Source)
	}
	if !containsString(item.Categories, models.CategoryConcert) {
		t.Errorf("Categories = %v, want concert from the category label", item.Categories)
	}
	if item.SourceLocalID != "tarpin-bien_0" {
		t.Errorf("SourceLocalID = %q", item.SourceLocalID)
	}
}

const cardsFixture = `
<html><body>
<div class="event-card">
  <h3 class="event-title"><a href="https://sortiramarseille.fr/soiree-dock">Grande soirée au Dock des Suds</a></h3>
  <time datetime="2025-04-01">1 avril</time>
  <img src="https://cdn.example/dock.jpg">
  <p class="event-description">La programmation complète.</p>
  <span class="event-location">Dock des Suds</span>
</div>
<div class="event-card">
  <h3 class="event-title">OK</h3>
</div>
</body></html>`

func TestExtractEventCards(t *testing.T) {
	doc := docFromString(t, cardsFixture)
	items := ExtractEventCards(doc, "https://sortiramarseille.fr/soirees-marseille", "sortiramarseille")

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (short title filtered)", len(items))
	}
	item := items[0]
	if item.URL != "https://sortiramarseille.fr/soiree-dock" {
		t.Errorf("URL = %q", item.URL)
	}
	if item.Date != "2025-04-01" {
		t.Errorf("Date = %q, want the datetime attribute", item.Date)
	}
	if item.Location != "Dock des Suds" {
		t.Errorf("Location = %q", item.Location)
	}
	if !containsString(item.Categories, models.CategorySoiree) {
		t.Errorf("Categories = %v, want soiree from the title", item.Categories)
	}
}

const cardsFallbackFixture = `
<html><body>
<nav>
  <a href="/agenda/concert-fiesta">Fiesta des Suds</a>
  <a href="/about">About</a>
</nav>
</body></html>`

func TestExtractEventCardsFallbackSweep(t *testing.T) {
	doc := docFromString(t, cardsFallbackFixture)
	items := ExtractEventCards(doc, "https://www.marseille-tourisme.com/agenda/", "marseille-tourisme")

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 swept anchor", len(items))
	}
	if items[0].URL != "https://www.marseille-tourisme.com/agenda/concert-fiesta" {
		t.Errorf("URL = %q", items[0].URL)
	}
}

const sweepFixture = `
<html><body>
<a href="/soiree-electro-friche">Soirée electro à la Friche</a>
<a href="/vernissage-mucem">Vernissage au Mucem</a>
<a href="/mentions-legales">Mentions légales</a>
<a href="/soiree-electro-friche">Soirée electro à la Friche</a>
</body></html>`

func TestExtractLinkSweep(t *testing.T) {
	doc := docFromString(t, sweepFixture)
	items := ExtractLinkSweep(doc, "https://unknown.example/agenda", "unknown")

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (keyword gate plus dedupe)", len(items))
	}
	if !containsString(items[0].Categories, models.CategoryElectro) {
		t.Errorf("items[0].Categories = %v", items[0].Categories)
	}
	if !containsString(items[1].Categories, models.CategoryExpo) {
		t.Errorf("items[1].Categories = %v", items[1].Categories)
	}
}

const socialFixture = `
<html><body>
<div>du 2025-05-10 au 2025-05-12 <a href="/events/12345"></a></div>
<a href="/events/67890" aria-label="Release party"> </a>
<a href="/profile">Profil</a>
</body></html>`

func TestExtractSocialEventLinks(t *testing.T) {
	doc := docFromString(t, socialFixture)
	items := ExtractSocialEventLinks(doc, "https://social.example/venue", "vortex_fb")

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != PlaceholderSocialTitle {
		t.Errorf("items[0].Title = %q, want the placeholder", items[0].Title)
	}
	if items[0].Date != "2025-05-10" {
		t.Errorf("items[0].Date = %q, want the first date in surrounding text", items[0].Date)
	}
	if items[1].Title != "Release party" {
		t.Errorf("items[1].Title = %q, want the aria-label", items[1].Title)
	}
	if items[0].URL != "https://social.example/events/12345" {
		t.Errorf("items[0].URL = %q", items[0].URL)
	}
}

func TestCategorizeText(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Concert de jazz", []string{models.CategoryConcert}},
		{"Vernissage et DJ set", []string{models.CategoryConcert, models.CategoryExpo}},
		{"Réunion publique", nil},
	}
	for _, tt := range tests {
		got := categorizeText(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("categorizeText(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("categorizeText(%q) = %v, want %v", tt.text, got, tt.want)
				break
			}
		}
	}
}

func TestOrDefaultCategory(t *testing.T) {
	if got := orDefaultCategory(nil); len(got) != 1 || got[0] != models.DefaultCategory {
		t.Errorf("orDefaultCategory(nil) = %v", got)
	}
	if got := orDefaultCategory([]string{"concert", "concert"}); len(got) != 1 {
		t.Errorf("orDefaultCategory should dedupe, got %v", got)
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://a.example/page", "/x", "https://a.example/x"},
		{"https://a.example/dir/", "x", "https://a.example/dir/x"},
		{"https://a.example/", "https://b.example/y", "https://b.example/y"},
		{"https://a.example/", "  ", ""},
	}
	for _, tt := range tests {
		if got := resolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("resolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func containsString(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
