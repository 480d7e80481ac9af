package services

import (
	"strings"
	"time"

	"market-scout/models"
	"market-scout/utils"
)

// Cleaner transforms RawListings into clean, extracted Listings: normalized
// text, parsed price, gazetteer city, product category and condition.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw listings and returns cleaned records. Listings without
// a URL, with a duplicate URL, or without a parseable price are dropped;
// a missing city is kept as an empty field and an unrecognized category
// falls back to other.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	seen := make(map[string]struct{})
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", r.Title)
			continue
		}

		if _, dup := seen[url]; dup {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}
		seen[url] = struct{}{}

		title := NormalizeText(r.Title)
		description := NormalizeText(r.Description)

		price, ok := ExtractPrice(r.RawPrice)
		if !ok {
			c.logger.Debug("[cleaner] No price found, skipping: %s", title)
			continue
		}

		// Location field first, then the free text as a fallback.
		city, ok := ExtractCity(r.RawLocation)
		if !ok {
			city, _ = ExtractCity(title + " " + description)
		}

		listing := &models.Listing{
			Platform:    strings.ToLower(strings.TrimSpace(r.Platform)),
			Title:       title,
			Description: description,
			Price:       price,
			Currency:    "ILS",
			Category:    CategorizeProduct(title, description),
			Condition:   NormalizeCondition(description),
			City:        city,
			Seller:      NormalizeText(r.Seller),
			URL:         url,
			SourceID:    r.SourceID,
			CreatedAt:   time.Now(),
		}

		result = append(result, listing)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}
