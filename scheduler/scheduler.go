package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"subito_scrooper/config"
	"subito_scrooper/models"
	"subito_scrooper/services"
)

// Indexer rebuilds the listing table.
type Indexer interface {
	BuildIndex(ctx context.Context) (*models.IndexRun, error)
}

type Scheduler struct {
	cfg     config.SchedulerConfig
	indexer Indexer
	cron    *cron.Cron
	ticker  *time.Ticker
	stopCh  chan struct{}
	stop    sync.Once
}

func New(cfg config.SchedulerConfig, indexer Indexer) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		indexer: indexer,
		cron:    cron.New(),
		stopCh:  make(chan struct{}),
	}
}

// Start registers the configured schedule. Cron wins over Interval; with
// neither set the daemon only rebuilds on request.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		slog.Info("starting scheduler", "cron", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() {
			s.run(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Interval > 0 {
		slog.Info("starting scheduler", "interval", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.run(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		slog.Info("no schedule configured, index is only rebuilt on request")
	}

	return nil
}

func (s *Scheduler) Stop() {
	s.stop.Do(func() {
		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
	})
}

func (s *Scheduler) run(ctx context.Context) {
	run, err := s.indexer.BuildIndex(ctx)
	switch {
	case errors.Is(err, services.ErrIndexInProgress):
		slog.Info("scheduled build skipped, another build is running")
	case err != nil:
		slog.Error("scheduled build failed", "error", err)
	default:
		slog.Info("scheduled build complete", "run_id", run.ID, "rows", run.RowsWritten)
	}
}
