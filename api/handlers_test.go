package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"market-scout/models"
	"market-scout/services"
	"market-scout/storage"
	"market-scout/utils"
)

// stubStore is an in-memory ListingStore for handler tests.
type stubStore struct {
	listings      []*models.Listing
	lastFilter    storage.ListingFilter
	trendCategory models.Category
	trendDays     int
}

func (s *stubStore) FetchAll() ([]*models.Listing, error) { return s.listings, nil }

func (s *stubStore) FetchByID(id int64) (*models.Listing, error) {
	for _, l := range s.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubStore) Query(filter storage.ListingFilter) ([]*models.Listing, error) {
	s.lastFilter = filter
	return s.listings, nil
}

func (s *stubStore) Search(q string, limit, offset int) ([]*models.Listing, error) {
	var out []*models.Listing
	for _, l := range s.listings {
		if strings.Contains(strings.ToLower(l.Title), strings.ToLower(q)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubStore) CategoryStats() ([]storage.CategoryStat, error) {
	return []storage.CategoryStat{{Category: models.CategoryGPU, Count: 2, AvgPrice: 1500}}, nil
}

func (s *stubStore) CityStats() ([]storage.CityStat, error) {
	return []storage.CityStat{{City: "חיפה", Count: 3, AvgPrice: 900}}, nil
}

func (s *stubStore) TrendStats(category models.Category, days int) ([]storage.TrendStat, error) {
	s.trendCategory = category
	s.trendDays = days
	return []storage.TrendStat{
		{Date: "2026-08-29", Count: 4, AvgPrice: 1200},
		{Date: "2026-08-30", Count: 2, AvgPrice: 950},
	}, nil
}

func newTestServer(t *testing.T, store *stubStore) *Server {
	t.Helper()
	logger := utils.NewLogger()
	engine, err := services.NewScoringEngine(services.ScoringConfig{
		CPUWeight:            0.4,
		GPUWeight:            0.5,
		OtherWeight:          0.1,
		VRAMPenaltyThreshold: 8,
		VRAMPenaltyFactor:    0.85,
	}, logger)
	if err != nil {
		t.Fatalf("NewScoringEngine: %v", err)
	}
	return NewServer(store, engine, logger)
}

func testListings() []*models.Listing {
	return []*models.Listing{
		{ID: 1, Platform: "yad2", Title: "RTX 3070", Price: 1800, Category: models.CategoryGPU, City: "חיפה"},
		{ID: 2, Platform: "yad2", Title: "Intel i7", Price: 800, Category: models.CategoryCPU, City: "Tel Aviv"},
	}
}

func doRequest(srv *Server, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestListingsEndpoint(t *testing.T) {
	store := &stubStore{listings: testListings()}
	srv := newTestServer(t, store)

	rec := doRequest(srv, http.MethodGet, "/listings?category=gpu&city=חיפה&min_price=100&limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var got []*models.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("listings: got %d, want 2", len(got))
	}

	if store.lastFilter.Category != models.CategoryGPU {
		t.Errorf("filter category: got %q, want gpu", store.lastFilter.Category)
	}
	if store.lastFilter.MinPrice != 100 {
		t.Errorf("filter min price: got %.2f, want 100", store.lastFilter.MinPrice)
	}
	if store.lastFilter.Limit != 5 {
		t.Errorf("filter limit: got %d, want 5", store.lastFilter.Limit)
	}
}

func TestListingByID(t *testing.T) {
	srv := newTestServer(t, &stubStore{listings: testListings()})

	rec := doRequest(srv, http.MethodGet, "/listings/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var got models.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Title != "RTX 3070" {
		t.Errorf("title: got %q, want RTX 3070", got.Title)
	}
}

func TestListingByIDNotFound(t *testing.T) {
	srv := newTestServer(t, &stubStore{listings: testListings()})

	rec := doRequest(srv, http.MethodGet, "/listings/99", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	srv := newTestServer(t, &stubStore{listings: testListings()})

	rec := doRequest(srv, http.MethodGet, "/search?q=x", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for 1-char query: got %d, want 400", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/search?q=rtx", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var got []*models.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("search results: got %+v, want the RTX listing", got)
	}
}

func TestStatsEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubStore{listings: testListings()})

	rec := doRequest(srv, http.MethodGet, "/stats/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("category stats status: got %d, want 200", rec.Code)
	}
	var catStats []storage.CategoryStat
	if err := json.Unmarshal(rec.Body.Bytes(), &catStats); err != nil {
		t.Fatalf("decode category stats: %v", err)
	}
	if len(catStats) != 1 || catStats[0].Category != models.CategoryGPU {
		t.Errorf("category stats: got %+v", catStats)
	}

	rec = doRequest(srv, http.MethodGet, "/stats/cities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("city stats status: got %d, want 200", rec.Code)
	}
	var cityStats []storage.CityStat
	if err := json.Unmarshal(rec.Body.Bytes(), &cityStats); err != nil {
		t.Fatalf("decode city stats: %v", err)
	}
	if len(cityStats) != 1 || cityStats[0].City != "חיפה" {
		t.Errorf("city stats: got %+v", cityStats)
	}
}

func TestTrendStatsEndpoint(t *testing.T) {
	store := &stubStore{listings: testListings()}
	srv := newTestServer(t, store)

	rec := doRequest(srv, http.MethodGet, "/stats/trends?category=gpu&days=7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var trends []storage.TrendStat
	if err := json.Unmarshal(rec.Body.Bytes(), &trends); err != nil {
		t.Fatalf("decode trends: %v", err)
	}
	if len(trends) != 2 {
		t.Fatalf("trends: got %d, want 2", len(trends))
	}
	if trends[0].Date != "2026-08-29" || trends[0].Count != 4 {
		t.Errorf("trends[0]: got %+v", trends[0])
	}

	if store.trendCategory != models.CategoryGPU {
		t.Errorf("category: got %q, want gpu", store.trendCategory)
	}
	if store.trendDays != 7 {
		t.Errorf("days: got %d, want 7", store.trendDays)
	}
}

func TestTrendStatsDefaultsAndBounds(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(t, store)

	rec := doRequest(srv, http.MethodGet, "/stats/trends", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status without params: got %d, want 200", rec.Code)
	}
	if store.trendDays != 30 {
		t.Errorf("default days: got %d, want 30", store.trendDays)
	}

	rec = doRequest(srv, http.MethodGet, "/stats/trends?days=366", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for days=366: got %d, want 400", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/stats/trends?days=0", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for days=0: got %d, want 400", rec.Code)
	}
}

func TestScoreEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	body := `{
		"price": 4500,
		"components": {
			"cpu_score": 85, "gpu_score": 92,
			"ram_gb": 16, "storage_gb": 500, "gpu_vram_gb": 8,
			"platform_score": 1.1, "liquidity_score": 1.0, "condition_score": 0.9
		}
	}`

	rec := doRequest(srv, http.MethodPost, "/score", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var result models.ScoringResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.VRAMPenaltyApplied {
		t.Error("expected VRAM penalty for 8GB at threshold 8")
	}
	if result.FinalScore <= 0 {
		t.Errorf("final score: got %.4f, want > 0", result.FinalScore)
	}
}

func TestScoreEndpointRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := doRequest(srv, http.MethodPost, "/score", `{"price": -1, "components": {}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for negative price: got %d, want 400", rec.Code)
	}

	rec = doRequest(srv, http.MethodPost, "/score", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for malformed body: got %d, want 400", rec.Code)
	}
}
