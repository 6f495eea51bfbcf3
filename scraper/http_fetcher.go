package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"subito_scrooper/httputil"
)

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	retry     httputil.Retry
}

func NewHTTPFetcher(client *http.Client, userAgent string, retries int, baseDelay time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: userAgent,
		retry:     httputil.Retry{MaxAttempts: retries, BaseDelay: baseDelay},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := f.retry.Do(ctx, "fetch "+url, func() error {
		var err error
		body, err = f.fetchOnce(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("fetched page", "url", url, "bytes", len(body))
	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %v: %w", err, httputil.ErrPermanent)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "it-IT,it;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("subito error %d", resp.StatusCode)
	default:
		return nil, fmt.Errorf("subito error %d: %w", resp.StatusCode, httputil.ErrPermanent)
	}

	return io.ReadAll(resp.Body)
}

func (f *HTTPFetcher) Close() error {
	return nil
}
