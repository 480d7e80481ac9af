// Package facebook collects sale posts from public Facebook groups with a
// headless browser. Group feeds are rendered client-side, so plain HTTP
// fetching is not enough here.
package facebook

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"market-scout/config"
	"market-scout/models"
	"market-scout/utils"
)

const platform = "facebook"

// post is the shape returned by the in-page extraction script.
type post struct {
	Text      string `json:"text"`
	Author    string `json:"author"`
	Permalink string `json:"permalink"`
	PostID    string `json:"postId"`
}

// Scraper collects raw sale posts from the configured group IDs.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	pool       *utils.WorkerPool
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	mu       sync.Mutex
	listings []*models.RawListing
}

// New creates a ready-to-use Facebook group Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		pool:       utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visitedURL: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		listings: make([]*models.RawListing, 0),
	}
}

// GroupIDs returns the configured group IDs, comma-separated in the env var.
func (s *Scraper) GroupIDs() []string {
	var ids []string
	for _, id := range strings.Split(s.cfg.FacebookGroups, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Scrape visits every configured group feed and collects raw posts. The post
// text carries price and location inline; extraction happens downstream in
// the cleaner.
func (s *Scraper) Scrape() ([]*models.RawListing, error) {
	groups := s.GroupIDs()
	if len(groups) == 0 {
		return nil, fmt.Errorf("no facebook groups configured (set FACEBOOK_GROUPS)")
	}

	s.logger.Info("[facebook] Starting scrape — %d groups", len(groups))

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[facebook] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(s.cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()
	allocCtx = silentCtx

	for _, groupID := range groups {
		groupID := groupID
		s.pool.Submit(func() {
			if err := s.scrapeGroup(allocCtx, groupID); err != nil {
				s.logger.Error("[facebook] Group %s failed: %v", groupID, err)
			}
		})
	}
	s.pool.Wait()

	s.logger.Info("[facebook] Scrape complete — total raw listings: %d", len(s.listings))
	return s.listings, nil
}

// scrapeGroup loads one group feed and extracts its visible posts.
func (s *Scraper) scrapeGroup(allocCtx context.Context, groupID string) error {
	groupURL := "https://www.facebook.com/groups/" + groupID

	var posts []post
	err := s.retry.Do("facebook-group-"+groupID, func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		posts = nil
		return chromedp.Run(ctx,
			chromedp.Navigate(groupURL),
			chromedp.Sleep(5*time.Second),
			// Scroll a few times so the feed loads more posts.
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`
				(function() {
					var out = [];
					var articles = document.querySelectorAll('div[role="article"]');
					for (var i = 0; i < articles.length; i++) {
						var a = articles[i];
						var text = (a.innerText || '').trim();
						if (!text) continue;

						var author = '';
						var strong = a.querySelector('strong, h3 a, h4 a');
						if (strong) author = (strong.textContent || '').trim();

						var permalink = '';
						var links = a.querySelectorAll('a[href*="/posts/"], a[href*="/permalink/"]');
						if (links.length > 0) permalink = links[0].href.split('?')[0];

						var postId = '';
						var m = permalink.match(/(?:posts|permalink)\/(\d+)/);
						if (m) postId = m[1];

						out.push({text: text, author: author, permalink: permalink, postId: postId});
					}
					return out;
				})()
			`, &posts),
		)
	})
	if err != nil {
		return err
	}

	collected := 0
	for _, p := range posts {
		if p.Permalink == "" || !s.visitedURL.Add(p.Permalink) {
			continue
		}

		// The whole post text doubles as title and description; the cleaner
		// extracts price and city from it.
		raw := &models.RawListing{
			Title:       firstLine(p.Text),
			Description: p.Text,
			RawPrice:    p.Text,
			RawLocation: p.Text,
			Seller:      p.Author,
			URL:         p.Permalink,
			SourceID:    p.PostID,
			ScrapedAt:   time.Now(),
			Platform:    platform,
		}

		s.mu.Lock()
		s.listings = append(s.listings, raw)
		s.mu.Unlock()
		collected++
	}

	s.logger.Info("[facebook] Group %s done — %d posts collected", groupID, collected)
	return nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

// findChromeBinary locates a usable Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	candidates := []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	known := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, path := range known {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
