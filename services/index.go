package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"subito_scrooper/config"
	"subito_scrooper/models"
	"subito_scrooper/scraper"
	"subito_scrooper/storage"
)

var (
	ErrIndexInProgress = errors.New("index build already in progress")
	ErrNoPagesFetched  = errors.New("no page could be fetched")
)

// PageArchiver stores raw pages; storage.PageArchive implements it.
type PageArchiver interface {
	ArchivePage(ctx context.Context, siteID string, runID uuid.UUID, page int, sourceURL string, html []byte) (string, error)
}

// IndexService fetches the configured search pages, extracts their
// listings and appends them to the record store in one batch.
type IndexService struct {
	fetcher   scraper.Fetcher
	store     storage.RecordStore
	site      *config.SiteConfig
	runs      storage.RunLog
	archive   PageArchiver
	pageDelay time.Duration

	mu sync.Mutex
}

func NewIndexService(fetcher scraper.Fetcher, store storage.RecordStore, site *config.SiteConfig) *IndexService {
	return &IndexService{
		fetcher: fetcher,
		store:   store,
		site:    site,
	}
}

// SetRunLog enables run bookkeeping.
func (s *IndexService) SetRunLog(runs storage.RunLog) {
	s.runs = runs
}

// SetArchive enables raw page archiving.
func (s *IndexService) SetArchive(archive PageArchiver) {
	s.archive = archive
}

func (s *IndexService) SetPageDelay(d time.Duration) {
	s.pageDelay = d
}

// BuildIndex runs one full pass. Only one pass runs at a time; a second
// caller gets ErrIndexInProgress. Pages that fail to fetch are skipped,
// but a page that fails extraction aborts the pass before anything is
// written.
func (s *IndexService) BuildIndex(ctx context.Context) (*models.IndexRun, error) {
	if !s.mu.TryLock() {
		return nil, ErrIndexInProgress
	}
	defer s.mu.Unlock()

	run := models.NewIndexRun(s.site.ID)
	if s.runs != nil {
		if err := s.runs.CreateRun(ctx, run); err != nil {
			slog.Warn("failed to record index run", "run", run.ID, "error", err)
		}
	}

	slog.Info("index build started", "run", run.ID, "site", s.site.ID, "pages", s.site.Pages)

	err := s.build(ctx, run)
	run.Finish(err)

	if s.runs != nil {
		if uerr := s.runs.UpdateRun(context.WithoutCancel(ctx), run); uerr != nil {
			slog.Warn("failed to update index run", "run", run.ID, "error", uerr)
		}
	}

	if err != nil {
		slog.Error("index build failed", "run", run.ID, "error", err)
		return run, err
	}

	slog.Info("index build finished",
		"run", run.ID,
		"pages_fetched", run.PagesFetched,
		"pages_failed", run.PagesFailed,
		"listings", run.ListingsFound,
		"rows", run.RowsWritten,
	)
	return run, nil
}

func (s *IndexService) build(ctx context.Context, run *models.IndexRun) error {
	listings, err := s.collect(ctx, run)
	if err != nil {
		return err
	}

	n, err := s.store.WriteBatch(ctx, s.site.Table, s.site.Schema, models.Records(listings), s.site.CreateTable)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.site.Table, err)
	}
	run.RowsWritten = n
	return nil
}

func (s *IndexService) collect(ctx context.Context, run *models.IndexRun) ([]models.Listing, error) {
	urls := s.site.URLs()

	var all []models.Listing
	for i, url := range urls {
		if i > 0 && s.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pageDelay):
			}
		}

		html, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			run.PagesFailed++
			slog.Warn("page fetch failed", "url", url, "error", err)
			continue
		}
		run.PagesFetched++

		if s.archive != nil {
			if key, err := s.archive.ArchivePage(ctx, s.site.ID, run.ID, i, url, html); err != nil {
				slog.Warn("page archive failed", "url", url, "error", err)
			} else {
				slog.Debug("page archived", "url", url, "key", key)
			}
		}

		listings, err := scraper.Extract(html, url)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", url, err)
		}
		slog.Info("page extracted", "url", url, "listings", len(listings))

		run.ListingsFound += len(listings)
		all = append(all, listings...)
	}

	if len(urls) > 0 && run.PagesFetched == 0 {
		return nil, ErrNoPagesFetched
	}
	return all, nil
}
