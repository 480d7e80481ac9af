package yad2

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"market-scout/config"
	"market-scout/utils"
)

const feedHTML = `
<html><body>
  <div class="feeditem">
    <h3 class="title">מעבד Intel Core i7</h3>
    <span class="price">₪1,200</span>
    <span class="location">חיפה</span>
    <div class="description">כמו חדש באחריות</div>
    <span class="seller">דני</span>
    <a href="/item/12345">פרטים</a>
  </div>
  <div class="feeditem">
    <h3 class="title">No price here</h3>
    <a href="/item/67890">פרטים</a>
  </div>
  <div class="feeditem">
    <h3 class="title">מעבד Intel Core i7</h3>
    <span class="price">₪1,200</span>
    <a href="/item/12345">פרטים</a>
  </div>
</body></html>`

func newTestScraper() *Scraper {
	cfg := &config.Config{
		Yad2BaseURL:   "https://www.yad2.co.il",
		MaxRetries:    1,
		RateLimitMs:   0,
		PagesToScrape: 1,
	}
	return New(cfg, utils.NewLogger())
}

func TestParsePage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(feedHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	s := newTestScraper()
	listings := s.parsePage(doc)

	// The priceless card is dropped and the duplicate URL is deduplicated.
	if len(listings) != 1 {
		t.Fatalf("listings: got %d, want 1", len(listings))
	}

	l := listings[0]
	if l.Title != "מעבד Intel Core i7" {
		t.Errorf("Title = %q", l.Title)
	}
	if l.RawPrice != "₪1,200" {
		t.Errorf("RawPrice = %q", l.RawPrice)
	}
	if l.RawLocation != "חיפה" {
		t.Errorf("RawLocation = %q", l.RawLocation)
	}
	if l.URL != "https://www.yad2.co.il/item/12345" {
		t.Errorf("URL = %q", l.URL)
	}
	if l.SourceID != "12345" {
		t.Errorf("SourceID = %q", l.SourceID)
	}
	if l.Platform != "yad2" {
		t.Errorf("Platform = %q", l.Platform)
	}
}

func TestSourceIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.yad2.co.il/item/12345", "12345"},
		{"https://www.yad2.co.il/computers/item/98765/details", "98765"},
		{"https://www.yad2.co.il/computers", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sourceIDFromURL(tt.url); got != tt.want {
			t.Errorf("sourceIDFromURL(%q) = %q; want %q", tt.url, got, tt.want)
		}
	}
}
