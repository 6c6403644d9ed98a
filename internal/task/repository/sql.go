package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) FindByVariant(ctx context.Context, variantID string) (*model.Task, error) {
	conn := database.Conn(ctx, r.DB)

	var t model.Task
	query := conn.Rebind(`SELECT * FROM tasks WHERE variant_id = ?`)
	err := sqlx.GetContext(ctx, conn, &t, query, variantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.TaskFilters) ([]model.Task, error) {
	conn := database.Conn(ctx, r.DB)

	conditions := []string{}
	args := map[string]interface{}{}

	if f != nil && f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query, bound, err := sqlx.Named("SELECT * FROM tasks"+whereClause+" ORDER BY product_title, variant_title, variant_id", args)
	if err != nil {
		return nil, err
	}

	items := []model.Task{}
	err = sqlx.SelectContext(ctx, conn, &items, conn.Rebind(query), bound...)
	return items, err
}

func (r *SQLRepository) Upsert(ctx context.Context, t *model.Task) error {
	query := `
        INSERT INTO tasks (
            variant_id, product_title, variant_title, sku, image_url,
            total_quantity, made_quantity, status, created_at, updated_at
        )
        VALUES (
            :variant_id, :product_title, :variant_title, :sku, :image_url,
            :total_quantity, :made_quantity, :status, :created_at, :updated_at
        )
        ON CONFLICT (variant_id)
        DO UPDATE SET
            product_title = excluded.product_title,
            variant_title = excluded.variant_title,
            sku = excluded.sku,
            image_url = excluded.image_url,
            total_quantity = excluded.total_quantity,
            updated_at = excluded.updated_at
    `
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, t)
	return apperror.FromDB(err)
}

func (r *SQLRepository) UpdateProgress(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET total_quantity = :total_quantity,
            made_quantity = :made_quantity,
            status = :status,
            updated_at = :updated_at
        WHERE variant_id = :variant_id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, t)
	return apperror.FromDB(err)
}

func (r *SQLRepository) Delete(ctx context.Context, variantID string) error {
	conn := database.Conn(ctx, r.DB)
	_, err := conn.ExecContext(ctx, conn.Rebind(`DELETE FROM tasks WHERE variant_id = ?`), variantID)
	return err
}

func (r *SQLRepository) DeleteZeroTotal(ctx context.Context) (int64, error) {
	res, err := database.Conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM tasks WHERE total_quantity = 0`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
