// Package api exposes the stored listings and the valuation engine over a
// small JSON REST surface.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"market-scout/services"
	"market-scout/storage"
	"market-scout/utils"
)

// Server ties the HTTP handlers to the listing store and scoring engine.
type Server struct {
	store  storage.ListingStore
	engine *services.ScoringEngine
	logger *utils.Logger
}

// NewServer creates a Server over the given store and engine.
func NewServer(store storage.ListingStore, engine *services.ScoringEngine, logger *utils.Logger) *Server {
	return &Server{store: store, engine: engine, logger: logger}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/listings", s.handleListings).Methods(http.MethodGet)
	r.HandleFunc("/listings/{id:[0-9]+}", s.handleListing).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/stats/categories", s.handleCategoryStats).Methods(http.MethodGet)
	r.HandleFunc("/stats/cities", s.handleCityStats).Methods(http.MethodGet)
	r.HandleFunc("/stats/trends", s.handleTrendStats).Methods(http.MethodGet)
	r.HandleFunc("/score", s.handleScore).Methods(http.MethodPost)

	return r
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.logger.Info("[api] Listening on %s", addr)
	return srv.ListenAndServe()
}
