package services

import (
	"fmt"
	"sort"
	"strings"

	"market-scout/models"
	"market-scout/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByPlatform: make(map[string]int),
		ListingsByCategory: make(map[models.Category]int),
		ListingsByCity:     make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priced []*models.Listing

	for _, l := range listings {
		report.ListingsByPlatform[l.Platform]++
		report.ListingsByCategory[l.Category]++
		if l.Price > 0 {
			priced = append(priced, l)
		}
		if l.City != "" {
			report.ListingsByCity[l.City]++
		}
	}

	// Price stats (only listings with price > 0)
	if len(priced) > 0 {
		report.MinPrice = priced[0].Price
		report.MaxPrice = priced[0].Price
		var total float64
		for _, l := range priced {
			total += l.Price
			if l.Price < report.MinPrice {
				report.MinPrice = l.Price
			}
			if l.Price > report.MaxPrice {
				report.MaxPrice = l.Price
				report.MostExpensive = l
			}
		}
		report.AveragePrice = round2(total / float64(len(priced)))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	return report
}

// RankDeals attaches scoring results to the report: listings are valued with
// the given specs estimator and the top five by final score are kept.
// Listings the estimator has no specs for, or with non-positive prices, are
// skipped.
func (s *InsightService) RankDeals(
	report *models.InsightReport,
	listings []*models.Listing,
	engine *ScoringEngine,
	estimate func(*models.Listing) (models.ComponentSpecs, bool),
) {
	var scored []*models.ScoredListing

	for _, l := range listings {
		specs, ok := estimate(l)
		if !ok {
			continue
		}
		result, err := engine.ScoreListing(l.Price, specs)
		if err != nil {
			s.logger.Warn("[insights] Skipping unscorable listing %q: %v", l.Title, err)
			continue
		}
		scored = append(scored, &models.ScoredListing{Listing: l, Result: result})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Result.FinalScore > scored[j].Result.FinalScore
	})
	if len(scored) > 5 {
		scored = scored[:5]
	}
	report.TopDeals = scored
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 MARKET SCOUT INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total listings scraped : \033[1m%d\033[0m\n", r.TotalListings)
	for platform, count := range r.ListingsByPlatform {
		fmt.Printf("  %-22s : \033[1m%d\033[0m\n", platform, count)
	}
	fmt.Println()

	// Price Stats
	fmt.Printf("\033[1;33m  Price Statistics (ILS)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average price : \033[1;32m₪%.2f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32m₪%.2f\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32m₪%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// Most Expensive
	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Printf("  City  : %s\n", r.MostExpensive.City)
		fmt.Printf("  Price : \033[1;31m₪%.2f\033[0m\n", r.MostExpensive.Price)
		fmt.Println()
	}

	// Top deals by final score
	if len(r.TopDeals) > 0 {
		fmt.Printf("\033[1;33m  Top Deals (by deal score)\033[0m\n")
		fmt.Printf("  %s\n", thin)
		for i, d := range r.TopDeals {
			title := truncate(d.Listing.Title, 38)
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.2f\033[0m (RVI %.1f @ ₪%.0f)\n",
				i+1, title, d.Result.FinalScore, d.Result.RVI, d.Result.Price)
		}
		fmt.Println()
	}

	// Listings by category
	fmt.Printf("\033[1;33m  Listings by Category\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(categoryCounts(r.ListingsByCategory))
	fmt.Println()

	// Listings by city
	fmt.Printf("\033[1;33m  Listings by City\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(cityCounts(r.ListingsByCity))

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

type labelCount struct {
	label string
	count int
}

func categoryCounts(m map[models.Category]int) []labelCount {
	var out []labelCount
	for cat, cnt := range m {
		out = append(out, labelCount{string(cat), cnt})
	}
	return out
}

func cityCounts(m map[string]int) []labelCount {
	var out []labelCount
	for city, cnt := range m {
		if city != "" {
			out = append(out, labelCount{city, cnt})
		}
	}
	return out
}

func printCounts(counts []labelCount) {
	if len(counts) == 0 {
		fmt.Printf("  No data\n")
		return
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].label < counts[j].label
	})
	for _, lc := range counts {
		bar := strings.Repeat("█", lc.count)
		fmt.Printf("  %-30s %s (%d)\n", truncate(lc.label, 28), bar, lc.count)
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate shortens s to at most max runes. Hebrew titles are multi-byte, so
// cutting on bytes could split a rune mid-sequence.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
