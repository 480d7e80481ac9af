package yad2

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"market-scout/config"
	"market-scout/models"
	"market-scout/utils"
)

const platform = "yad2"

// Scraper collects computer-component listings from the Yad2 computers
// category.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	client     *http.Client
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	mu       sync.Mutex
	listings []*models.RawListing
}

// New creates a ready-to-use Yad2 Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		client:     &http.Client{Timeout: 10 * time.Second},
		visitedURL: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		listings: make([]*models.RawListing, 0),
	}
}

// Scrape drives pagination over the computers category and collects raw
// listings from each page.
func (s *Scraper) Scrape() ([]*models.RawListing, error) {
	s.logger.Info("[yad2] Starting scrape — target: %d pages", s.cfg.PagesToScrape)

	for page := 1; page <= s.cfg.PagesToScrape; page++ {
		pageURL := fmt.Sprintf("%s/computers?page=%d", s.cfg.Yad2BaseURL, page)
		s.logger.Info("[yad2] Scraping page %d — URL: %s", page, pageURL)

		doc, err := s.fetchDocument(pageURL)
		if err != nil {
			s.logger.Error("[yad2] Page %d failed: %v", page, err)
			break
		}

		pageListings := s.parsePage(doc)
		if len(pageListings) == 0 {
			s.logger.Warn("[yad2] Page %d returned 0 listings — stopping", page)
			break
		}

		s.mu.Lock()
		s.listings = append(s.listings, pageListings...)
		s.mu.Unlock()

		s.logger.Info("[yad2] Page %d done — collected %d listings so far",
			page, len(s.listings))

		time.Sleep(time.Duration(s.cfg.RateLimitMs) * time.Millisecond)
	}

	s.logger.Info("[yad2] Scrape complete — total raw listings: %d", len(s.listings))
	return s.listings, nil
}

// fetchDocument GETs the URL with retry and parses the body with goquery.
func (s *Scraper) fetchDocument(pageURL string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := s.retry.Do("yad2-fetch", func() error {
		req, err := http.NewRequest(http.MethodGet, pageURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", s.cfg.UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		return err
	})

	return doc, err
}

// parsePage extracts raw listing records from the feed item cards on one
// results page.
func (s *Scraper) parsePage(doc *goquery.Document) []*models.RawListing {
	var listings []*models.RawListing

	doc.Find(`div[class*="feeditem"], div[class*="feed-item"], div[class*="listing"]`).
		Each(func(_ int, card *goquery.Selection) {
			raw := s.parseCard(card)
			if raw == nil {
				return
			}
			if !s.visitedURL.Add(raw.URL) {
				s.logger.Debug("[yad2] Duplicate listing skipped: %s", raw.URL)
				return
			}
			listings = append(listings, raw)
		})

	return listings
}

// parseCard pulls the text fragments out of a single feed card. Cards
// without both a title and a price fragment are discarded here; all further
// cleaning happens downstream.
func (s *Scraper) parseCard(card *goquery.Selection) *models.RawListing {
	title := firstText(card, `h2, h3, a[class*="title"], span[class*="title"]`)
	priceText := firstText(card, `[class*="price"]`)
	if title == "" || priceText == "" {
		return nil
	}

	location := firstText(card, `[class*="location"], [class*="city"]`)
	description := firstText(card, `[class*="description"], [class*="content"]`)
	seller := firstText(card, `[class*="seller"], [class*="author"]`)

	link := ""
	if href, ok := card.Find("a[href]").First().Attr("href"); ok {
		link = s.absoluteURL(href)
	}

	return &models.RawListing{
		Title:       title,
		Description: description,
		RawPrice:    priceText,
		RawLocation: location,
		Seller:      seller,
		URL:         link,
		SourceID:    sourceIDFromURL(link),
		ScrapedAt:   time.Now(),
		Platform:    platform,
	}
}

func firstText(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}

func (s *Scraper) absoluteURL(href string) string {
	base, err := url.Parse(s.cfg.Yad2BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// sourceIDFromURL takes the last all-digit path segment as the platform's
// listing ID, if present.
func sourceIDFromURL(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	parts := strings.Split(parsed.Path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == "" {
			continue
		}
		if isDigits(parts[i]) {
			return parts[i]
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
