package models

import "time"

// Category is the closed set of product categories a listing can belong to.
type Category string

const (
	CategoryCPU           Category = "cpu"
	CategoryGPU           Category = "gpu"
	CategoryMotherboard   Category = "motherboard"
	CategoryRAM           Category = "ram"
	CategoryStorage       Category = "storage"
	CategoryPSU           Category = "psu"
	CategoryCooling       Category = "cooling"
	CategoryCase          Category = "case"
	CategoryCompleteBuild Category = "complete_build"
	CategoryOther         Category = "other"
)

// Condition describes the physical state a seller claims for the product.
type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionLikeNew   Condition = "like_new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
	ConditionForParts  Condition = "for_parts"
)

// RawListing holds unprocessed scraped data exactly as the collector saw it.
// This is written to CSV before any cleaning or extraction.
type RawListing struct {
	Title       string
	Description string
	RawPrice    string
	RawLocation string
	Seller      string
	URL         string
	SourceID    string
	ScrapedAt   time.Time
	Platform    string
}

// Listing is the cleaned, extracted record ready for PostgreSQL storage.
type Listing struct {
	ID          int64
	Platform    string
	Title       string
	Description string
	Price       float64
	Currency    string
	Category    Category
	Condition   Condition
	City        string
	Seller      string
	URL         string
	SourceID    string
	CreatedAt   time.Time
}

// InsightReport holds the computed analytics over the cleaned dataset.
type InsightReport struct {
	TotalListings      int
	ListingsByPlatform map[string]int
	AveragePrice       float64
	MinPrice           float64
	MaxPrice           float64
	MostExpensive      *Listing
	ListingsByCategory map[Category]int
	ListingsByCity     map[string]int
	TopDeals           []*ScoredListing
}

// ScoredListing pairs a stored listing with its valuation result, used for
// deal ranking in the insight report.
type ScoredListing struct {
	Listing *Listing
	Result  *ScoringResult
}
