package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"market-scout/models"
)

// PostgresWriter persists cleaned listings to PostgreSQL and serves the
// filtered queries used by the API.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id          SERIAL PRIMARY KEY,
			platform    VARCHAR(50)   NOT NULL,
			title       TEXT          NOT NULL,
			description TEXT          NOT NULL DEFAULT '',
			price       NUMERIC(10,2) NOT NULL DEFAULT 0,
			currency    VARCHAR(3)    NOT NULL DEFAULT 'ILS',
			category    VARCHAR(20)   NOT NULL DEFAULT 'other',
			condition   VARCHAR(20)   NOT NULL DEFAULT 'good',
			city        TEXT          NOT NULL DEFAULT '',
			seller      TEXT          NOT NULL DEFAULT '',
			url         TEXT          UNIQUE NOT NULL,
			source_id   TEXT          NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price    ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category);
		CREATE INDEX IF NOT EXISTS idx_listings_city     ON listings(city);
		CREATE INDEX IF NOT EXISTS idx_listings_platform ON listings(platform);
	`)
	return err
}

// Write batch-inserts cleaned listings, skipping URLs that already exist.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Listing) error {
	const cols = 11
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.Platform, l.Title, l.Description, l.Price, l.Currency,
			string(l.Category), string(l.Condition), l.City, l.Seller, l.URL, l.SourceID)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (platform, title, description, price, currency,
		                      category, condition, city, seller, url, source_id)
		VALUES %s
		ON CONFLICT (url) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

const listingColumns = `id, platform, title, description, price, currency,
	category, condition, city, seller, url, source_id, created_at`

func scanListing(rows *sql.Rows) (*models.Listing, error) {
	l := &models.Listing{}
	var category, condition string
	if err := rows.Scan(
		&l.ID, &l.Platform, &l.Title, &l.Description, &l.Price, &l.Currency,
		&category, &condition, &l.City, &l.Seller, &l.URL, &l.SourceID, &l.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("postgres: scan row: %w", err)
	}
	l.Category = models.Category(category)
	l.Condition = models.Condition(condition)
	return l, nil
}

func (pw *PostgresWriter) queryListings(query string, args ...interface{}) ([]*models.Listing, error) {
	rows, err := pw.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// FetchAll retrieves all stored listings — used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	return pw.queryListings(fmt.Sprintf(`
		SELECT %s FROM listings ORDER BY id
	`, listingColumns))
}

// FetchByID retrieves a single listing, or sql.ErrNoRows when absent.
func (pw *PostgresWriter) FetchByID(id int64) (*models.Listing, error) {
	listings, err := pw.queryListings(fmt.Sprintf(`
		SELECT %s FROM listings WHERE id = $1
	`, listingColumns), id)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, sql.ErrNoRows
	}
	return listings[0], nil
}

// Query retrieves listings matching the filter, most recent first.
func (pw *PostgresWriter) Query(filter ListingFilter) ([]*models.Listing, error) {
	var conditions []string
	var args []interface{}

	add := func(clause string, val interface{}) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Category != "" {
		add("category = $%d", string(filter.Category))
	}
	if filter.City != "" {
		add("city ILIKE '%%' || $%d || '%%'", filter.City)
	}
	if filter.MinPrice > 0 {
		add("price >= $%d", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		add("price <= $%d", filter.MaxPrice)
	}
	if filter.Platform != "" {
		add("platform = $%d", filter.Platform)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s FROM listings %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, listingColumns, where, len(args)-1, len(args))

	return pw.queryListings(query, args...)
}

// Search retrieves listings whose title or description contains the query
// text, case-insensitively.
func (pw *PostgresWriter) Search(q string, limit, offset int) ([]*models.Listing, error) {
	if limit <= 0 {
		limit = 100
	}
	return pw.queryListings(fmt.Sprintf(`
		SELECT %s FROM listings
		WHERE title ILIKE '%%' || $1 || '%%' OR description ILIKE '%%' || $1 || '%%'
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, listingColumns), q, limit, offset)
}

// CategoryStats aggregates listing counts and price stats per category.
func (pw *PostgresWriter) CategoryStats() ([]CategoryStat, error) {
	rows, err := pw.db.Query(`
		SELECT category, COUNT(*), ROUND(AVG(price), 2), MIN(price), MAX(price)
		FROM listings
		GROUP BY category
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: category stats: %w", err)
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var s CategoryStat
		var category string
		if err := rows.Scan(&category, &s.Count, &s.AvgPrice, &s.MinPrice, &s.MaxPrice); err != nil {
			return nil, fmt.Errorf("postgres: scan category stat: %w", err)
		}
		s.Category = models.Category(category)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// TrendStats aggregates listing counts and average price per day over the
// given window, optionally narrowed to one category.
func (pw *PostgresWriter) TrendStats(category models.Category, days int) ([]TrendStat, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	query := `
		SELECT DATE(created_at)::text, COUNT(*), ROUND(AVG(price), 2)
		FROM listings
		WHERE created_at >= $1
	`
	args := []interface{}{since}
	if category != "" {
		query += " AND category = $2"
		args = append(args, string(category))
	}
	query += `
		GROUP BY DATE(created_at)
		ORDER BY DATE(created_at)
	`

	rows, err := pw.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: trend stats: %w", err)
	}
	defer rows.Close()

	var stats []TrendStat
	for rows.Next() {
		var s TrendStat
		if err := rows.Scan(&s.Date, &s.Count, &s.AvgPrice); err != nil {
			return nil, fmt.Errorf("postgres: scan trend stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// CityStats aggregates listing counts and average price per city.
func (pw *PostgresWriter) CityStats() ([]CityStat, error) {
	rows, err := pw.db.Query(`
		SELECT city, COUNT(*), ROUND(AVG(price), 2)
		FROM listings
		WHERE city <> ''
		GROUP BY city
		ORDER BY COUNT(*) DESC
		LIMIT 20
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: city stats: %w", err)
	}
	defer rows.Close()

	var stats []CityStat
	for rows.Next() {
		var s CityStat
		if err := rows.Scan(&s.City, &s.Count, &s.AvgPrice); err != nil {
			return nil, fmt.Errorf("postgres: scan city stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
