package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"market-scout/api"
	"market-scout/config"
	"market-scout/llm"
	"market-scout/models"
	"market-scout/scraper/facebook"
	"market-scout/scraper/yad2"
	"market-scout/services"
	"market-scout/storage"
	"market-scout/utils"
)

func main() {
	mode := flag.String("mode", "scrape", "run mode: scrape | serve | demo")
	platform := flag.String("platform", "yad2", "platform to scrape: yad2 | facebook | all")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()
	if cfg.Debug {
		logger.EnableDebug()
	}

	engine, err := services.NewScoringEngine(services.ScoringConfigFrom(cfg), logger)
	if err != nil {
		logger.Error("Invalid scoring configuration: %v", err)
		os.Exit(1)
	}

	switch *mode {
	case "scrape":
		runScrape(cfg, logger, *platform)
	case "serve":
		runServe(cfg, logger, engine)
	case "demo":
		runDemo(logger, engine)
	default:
		logger.Error("Unknown mode %q (want scrape, serve or demo)", *mode)
		os.Exit(1)
	}
}

func runScrape(cfg *config.Config, logger *utils.Logger, platform string) {
	logger.Info("=== Market Scout starting ===")
	logger.Info("Config — pages: %d | concurrency: %d | rate: %dms | platform: %s",
		cfg.PagesToScrape, cfg.MaxConcurrency, cfg.RateLimitMs, platform)

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	var rawListings []*models.RawListing

	if platform == "yad2" || platform == "all" {
		listings, err := yad2.New(cfg, logger).Scrape()
		if err != nil {
			logger.Error("Yad2 scrape failed: %v", err)
		}
		rawListings = append(rawListings, listings...)
	}
	if platform == "facebook" || platform == "all" {
		listings, err := facebook.New(cfg, logger).Scrape()
		if err != nil {
			logger.Error("Facebook scrape failed: %v", err)
		}
		rawListings = append(rawListings, listings...)
	}

	if len(rawListings) == 0 {
		logger.Error("No listings were scraped. Exiting.")
		os.Exit(1)
	}

	logger.Info("Scraped %d raw listings — writing to CSV...", len(rawListings))

	if err := csvWriter.WriteRaw(rawListings); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Raw listings saved to %s", cfg.CSVOutputPath)
	}

	enrichTitles(cfg, logger, rawListings)

	cleaner := services.NewCleaner(logger)
	cleanListings := cleaner.Clean(rawListings)

	if len(cleanListings) == 0 {
		logger.Error("All listings were dropped during cleaning. Exiting.")
		os.Exit(1)
	}

	logger.Info("Cleaned dataset: %d listings", len(cleanListings))

	if err := pgWriter.Write(cleanListings); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
	} else {
		logger.Info("Clean listings stored in PostgreSQL (table: listings)")
	}

	dbListings, err := pgWriter.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch listings from DB for insights: %v", err)
		dbListings = cleanListings
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(dbListings)
	insightSvc.Print(report)

	fmt.Printf("  Done. Raw CSV → %s | Clean data → PostgreSQL (listings table)\n\n",
		cfg.CSVOutputPath)
}

// enrichTitles runs the optional LLM normalizer over raw titles. A disabled
// or unreachable adapter leaves the titles untouched.
func enrichTitles(cfg *config.Config, logger *utils.Logger, raw []*models.RawListing) {
	client := llm.NewClient(cfg, logger)
	if !client.Enabled() {
		return
	}

	ctx := context.Background()
	if !client.Healthy(ctx) {
		logger.Warn("LLM enabled but unreachable — skipping enrichment")
		return
	}

	logger.Info("Enriching %d listing titles via LLM...", len(raw))
	for _, r := range raw {
		r.Title = client.NormalizeListing(ctx, r.Title)
	}
}

func runServe(cfg *config.Config, logger *utils.Logger, engine *services.ScoringEngine) {
	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		os.Exit(1)
	}
	defer pgWriter.Close()

	server := api.NewServer(pgWriter, engine, logger)
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	if err := server.ListenAndServe(addr); err != nil {
		logger.Error("API server stopped: %v", err)
		os.Exit(1)
	}
}

// runDemo scores a reference build and prints the result, then ranks a small
// sample set of listings by deal score.
func runDemo(logger *utils.Logger, engine *services.ScoringEngine) {
	specs := services.DemoComponents()

	result, err := engine.ScoreListing(4500, specs)
	if err != nil {
		logger.Error("Demo scoring failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n  Reference build (₪%.0f):\n", result.Price)
	fmt.Printf("    RVI          : %.2f\n", result.RVI)
	fmt.Printf("    PVR          : %.4f\n", result.PVR)
	fmt.Printf("    Deal score   : %.2f\n", result.FinalScore)
	fmt.Printf("    VRAM penalty : %v\n\n", result.VRAMPenaltyApplied)

	sample := []*models.Listing{
		{Title: "Gaming PC i5-12400F RTX 3070", Price: 4500, Category: models.CategoryCompleteBuild},
		{Title: "Gaming PC i5-12400F RTX 3070", Price: 5200, Category: models.CategoryCompleteBuild},
		{Title: "Gaming PC i5-12400F RTX 3070", Price: 3900, Category: models.CategoryCompleteBuild},
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(sample)
	insightSvc.RankDeals(report, sample, engine, func(*models.Listing) (models.ComponentSpecs, bool) {
		return specs, true
	})
	insightSvc.Print(report)
}
