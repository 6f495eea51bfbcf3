package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"subito_scrooper/config"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Fetcher returns the raw HTML behind a search page URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Close() error
}

func NewFetcher(cfg *config.ScraperConfig, site *config.SiteConfig, client *http.Client) (Fetcher, error) {
	userAgent := site.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	switch cfg.Fetcher {
	case "", "http":
		return NewHTTPFetcher(client, userAgent, cfg.Retries, time.Duration(cfg.DelayMS)*time.Millisecond), nil
	case "browser":
		return NewBrowserFetcher(userAgent, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown fetcher %q", cfg.Fetcher)
	}
}
