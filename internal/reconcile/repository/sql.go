package repository

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const defaultHistoryLimit = 20

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, run *model.SyncRun) error {
	query := `
        INSERT INTO sync_runs (
            id, status, started_at, finished_at, duration_ms,
            orders_fetched, orders_saved, orders_skipped, orders_removed,
            tasks_updated, error_message
        )
        VALUES (
            :id, :status, :started_at, :finished_at, :duration_ms,
            :orders_fetched, :orders_saved, :orders_skipped, :orders_removed,
            :tasks_updated, :error_message
        )
    `
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, run)
	return err
}

func (r *SQLRepository) FindRecent(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	conn := database.Conn(ctx, r.DB)

	runs := []model.SyncRun{}
	query := conn.Rebind(`SELECT * FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT ?`)
	err := sqlx.SelectContext(ctx, conn, &runs, query, limit)
	return runs, err
}
