package storage

import "market-scout/models"

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}

// ListingFilter narrows a listing query. Zero values mean "no constraint".
type ListingFilter struct {
	Category models.Category
	City     string
	MinPrice float64
	MaxPrice float64
	Platform string
	Limit    int
	Offset   int
}

// CategoryStat aggregates price data for one category.
type CategoryStat struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
	AvgPrice float64         `json:"avg_price"`
	MinPrice float64         `json:"min_price"`
	MaxPrice float64         `json:"max_price"`
}

// CityStat aggregates price data for one city.
type CityStat struct {
	City     string  `json:"city"`
	Count    int     `json:"count"`
	AvgPrice float64 `json:"avg_price"`
}

// TrendStat aggregates price data for one day.
type TrendStat struct {
	Date     string  `json:"date"`
	Count    int     `json:"count"`
	AvgPrice float64 `json:"avg_price"`
}

// ListingStore is the read side used by the API and insight layers.
type ListingStore interface {
	FetchAll() ([]*models.Listing, error)
	FetchByID(id int64) (*models.Listing, error)
	Query(filter ListingFilter) ([]*models.Listing, error)
	Search(q string, limit, offset int) ([]*models.Listing, error)
	CategoryStats() ([]CategoryStat, error)
	CityStats() ([]CityStat, error)
	TrendStats(category models.Category, days int) ([]TrendStat, error)
}
