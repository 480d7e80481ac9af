package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"market-scout/models"
	"market-scout/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("[api] Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"name":    "market-scout api",
		"version": "0.1.0",
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func queryFloat(r *http.Request, key string) float64 {
	if raw := r.URL.Query().Get(key); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return 0
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	filter := storage.ListingFilter{
		Category: models.Category(r.URL.Query().Get("category")),
		City:     r.URL.Query().Get("city"),
		MinPrice: queryFloat(r, "min_price"),
		MaxPrice: queryFloat(r, "max_price"),
		Platform: r.URL.Query().Get("platform"),
		Limit:    queryInt(r, "limit", 100),
		Offset:   queryInt(r, "offset", 0),
	}

	listings, err := s.store.Query(filter)
	if err != nil {
		s.logger.Error("[api] Listing query failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to query listings")
		return
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	s.writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := s.store.FetchByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		s.writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		s.logger.Error("[api] Listing fetch failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to fetch listing")
		return
	}
	s.writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(q) < 2 {
		s.writeError(w, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}

	listings, err := s.store.Search(q, queryInt(r, "limit", 100), queryInt(r, "offset", 0))
	if err != nil {
		s.logger.Error("[api] Search failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	s.writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.CategoryStats()
	if err != nil {
		s.logger.Error("[api] Category stats failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	if stats == nil {
		stats = []storage.CategoryStat{}
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCityStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.CityStats()
	if err != nil {
		s.logger.Error("[api] City stats failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	if stats == nil {
		stats = []storage.CityStat{}
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// handleTrendStats serves per-day listing counts and average prices over a
// trailing window of 1–365 days, optionally narrowed to one category.
func (s *Server) handleTrendStats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if days < 1 || days > 365 {
		s.writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}

	stats, err := s.store.TrendStats(models.Category(r.URL.Query().Get("category")), days)
	if err != nil {
		s.logger.Error("[api] Trend stats failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	if stats == nil {
		stats = []storage.TrendStat{}
	}
	s.writeJSON(w, http.StatusOK, stats)
}

type scoreRequest struct {
	Price      float64               `json:"price"`
	Components models.ComponentSpecs `json:"components"`
}

// handleScore values a hypothetical listing: price plus component specs in,
// full scoring result out. A non-positive price is a client error.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.engine.ScoreListing(req.Price, req.Components)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
