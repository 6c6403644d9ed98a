package model

import "time"

type SyncRunStatus string

const (
	SyncRunStatusSuccess SyncRunStatus = "success"
	SyncRunStatusFailed  SyncRunStatus = "failed"
)

// SyncRun is one entry of the sync history log.
type SyncRun struct {
	ID            string        `db:"id" json:"id"`
	Status        SyncRunStatus `db:"status" json:"status"`
	StartedAt     time.Time     `db:"started_at" json:"started_at"`
	FinishedAt    time.Time     `db:"finished_at" json:"finished_at"`
	DurationMs    int64         `db:"duration_ms" json:"duration_ms"`
	OrdersFetched int           `db:"orders_fetched" json:"orders_fetched"`
	OrdersSaved   int           `db:"orders_saved" json:"orders_saved"`
	OrdersSkipped int           `db:"orders_skipped" json:"orders_skipped"`
	OrdersRemoved int           `db:"orders_removed" json:"orders_removed"`
	TasksUpdated  int           `db:"tasks_updated" json:"tasks_updated"`
	ErrorMessage  *string       `db:"error_message" json:"error_message,omitempty"` // Nullable
}
