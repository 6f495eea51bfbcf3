package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// IndexRun records one pass of the index builder over the configured pages.
type IndexRun struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	SiteID        string     `json:"site_id" db:"site_id"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	Status        RunStatus  `json:"status" db:"status"`
	PagesFetched  int        `json:"pages_fetched" db:"pages_fetched"`
	PagesFailed   int        `json:"pages_failed" db:"pages_failed"`
	ListingsFound int        `json:"listings_found" db:"listings_found"`
	RowsWritten   int        `json:"rows_written" db:"rows_written"`
	ErrorMessage  string     `json:"error_message,omitempty" db:"error_message"`
}

func NewIndexRun(siteID string) *IndexRun {
	return &IndexRun{
		ID:        uuid.New(),
		SiteID:    siteID,
		StartedAt: time.Now().UTC(),
		Status:    RunStatusRunning,
	}
}

func (r *IndexRun) Finish(err error) {
	now := time.Now().UTC()
	r.FinishedAt = &now
	if err != nil {
		r.Status = RunStatusFailed
		r.ErrorMessage = err.Error()
		return
	}
	r.Status = RunStatusCompleted
}
