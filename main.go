package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subito_scrooper/api"
	"subito_scrooper/config"
	"subito_scrooper/generator"
	"subito_scrooper/httputil"
	"subito_scrooper/logging"
	"subito_scrooper/query"
	"subito_scrooper/scheduler"
	"subito_scrooper/scraper"
	"subito_scrooper/services"
	"subito_scrooper/storage"
)

var (
	scrapeNow  = flag.Bool("scrape", false, "Build the index once and exit")
	searchText = flag.String("search", "", "Answer one question against the index and exit")
	resetTable = flag.Bool("reset", false, "Drop the listing table and exit")
)

// store is what both backends offer.
type store interface {
	storage.RecordStore
	storage.RunLog
	ResetTable(ctx context.Context, table string) error
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logFile, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		slog.Warn("could not set up file logging", "error", err)
	} else {
		defer logFile.Close()
	}

	slog.Info("starting subito_scrooper", "site", cfg.Site.ID, "pages", cfg.Site.Pages, "table", cfg.Site.Table)

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if *resetTable {
		if err := db.ResetTable(ctx, cfg.Site.Table); err != nil {
			return err
		}
		slog.Info("table dropped", "table", cfg.Site.Table)
		return nil
	}

	clients, err := httputil.NewClients(&cfg.Proxy, cfg.Scraper.Timeout, cfg.Generator.Timeout)
	if err != nil {
		return err
	}
	if cfg.Proxy.URL != "" {
		slog.Info("using proxy", "proxy", maskConnectionString(cfg.Proxy.URL))
	}

	if *searchText != "" {
		searcher, err := newSearchService(ctx, cfg, clients, db)
		if err != nil {
			return err
		}
		res, err := searcher.Search(ctx, *searchText)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fetcher, err := scraper.NewFetcher(&cfg.Scraper, cfg.Site, clients.Scraping)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	indexer := services.NewIndexService(fetcher, db, cfg.Site)
	indexer.SetRunLog(db)
	indexer.SetPageDelay(time.Duration(cfg.Scraper.DelayMS) * time.Millisecond)
	if cfg.S3.Enabled() {
		archive, err := storage.NewPageArchive(ctx, cfg.S3)
		if err != nil {
			return err
		}
		indexer.SetArchive(archive)
		slog.Info("archiving pages to s3", "bucket", cfg.S3.Bucket)
	}

	if *scrapeNow {
		slog.Info("building index...")
		run, err := indexer.BuildIndex(ctx)
		if err != nil {
			return err
		}
		slog.Info("index built", "run_id", run.ID, "pages", run.PagesFetched, "failed", run.PagesFailed, "rows", run.RowsWritten)
		return nil
	}

	// Daemon mode
	searcher, err := newSearchService(ctx, cfg, clients, db)
	if err != nil {
		return err
	}

	sched := scheduler.New(cfg.Scheduler, indexer)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	server := api.NewServer(cfg.HTTPAddr, api.NewHandlers(indexer, searcher, db))
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	slog.Info("daemon running, press Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer stop()
	if err := server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	slog.Info("goodbye!")
	return nil
}

// openStore picks Postgres when DATABASE_URL is set, SQLite otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("connected to postgres", "url", maskConnectionString(cfg.DatabaseURL))
		return pg, nil
	}

	lite, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	slog.Info("sqlite database", "path", cfg.DBPath)
	return lite, nil
}

func newSearchService(ctx context.Context, cfg *config.Config, clients *httputil.Clients, db store) (*services.SearchService, error) {
	gen, err := generator.New(ctx, cfg.Generator, clients.API)
	if err != nil {
		return nil, err
	}
	slog.Info("generator ready", "service", cfg.Generator.Service, "model", cfg.Generator.Model)
	return services.NewSearchService(gen, query.NewExecutor(db), cfg.Site.Table, cfg.Site.Schema, cfg.Search.MaxRevisions), nil
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	// Simple mask - find :// and mask until @
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	// Find : after user
	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
