package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order/dto"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	conn := database.Conn(ctx, r.DB)

	var o model.Order
	err := sqlx.GetContext(ctx, conn, &o, conn.Rebind(`SELECT * FROM orders WHERE order_id = ?`), orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	conn := database.Conn(ctx, r.DB)
	if f == nil {
		f = &dto.OrderFilters{}
	}

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	} else if !f.IncludeArchived {
		conditions = append(conditions, "status <> :archived")
		args["archived"] = string(model.OrderStatusArchived)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, bound, err := sqlx.Named("SELECT count(*) FROM orders"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := sqlx.GetContext(ctx, conn, &count, conn.Rebind(countQuery), bound...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM orders" + whereClause + " ORDER BY order_date ASC, order_id ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	query, bound, err = sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}

	items := []model.Order{}
	err = sqlx.SelectContext(ctx, conn, &items, conn.Rebind(query), bound...)
	return items, count, err
}

func (r *SQLRepository) Upsert(ctx context.Context, o *model.Order) error {
	query := `
        INSERT INTO orders (
            order_id, order_name, order_date, total_items, fulfilled_items,
            status, created_at, updated_at
        )
        VALUES (
            :order_id, :order_name, :order_date, :total_items, :fulfilled_items,
            :status, :created_at, :updated_at
        )
        ON CONFLICT (order_id)
        DO UPDATE SET
            order_name = excluded.order_name,
            order_date = excluded.order_date,
            total_items = excluded.total_items,
            updated_at = excluded.updated_at
    `
	// fulfilled_items and status are owned by allocation and archival
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, o)
	return apperror.FromDB(err)
}

func (r *SQLRepository) UpdateProgress(ctx context.Context, orderID string, fulfilled int, status model.OrderStatus) error {
	conn := database.Conn(ctx, r.DB)
	query := conn.Rebind(`UPDATE orders SET fulfilled_items = ?, status = ?, updated_at = ? WHERE order_id = ?`)
	_, err := conn.ExecContext(ctx, query, fulfilled, string(status), time.Now().UTC(), orderID)
	return apperror.FromDB(err)
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	conn := database.Conn(ctx, r.DB)
	query := conn.Rebind(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`)
	_, err := conn.ExecContext(ctx, query, string(status), time.Now().UTC(), orderID)
	return err
}

func (r *SQLRepository) FindLineItems(ctx context.Context, orderID string) ([]model.OrderLineItem, error) {
	conn := database.Conn(ctx, r.DB)

	items := []model.OrderLineItem{}
	query := conn.Rebind(`SELECT * FROM order_line_items WHERE order_id = ? ORDER BY created_at ASC, line_item_id ASC`)
	err := sqlx.SelectContext(ctx, conn, &items, query, orderID)
	return items, err
}

func (r *SQLRepository) UpsertLineItem(ctx context.Context, li *model.OrderLineItem) error {
	query := `
        INSERT INTO order_line_items (
            line_item_id, order_id, variant_id, product_title, variant_title,
            sku, image_url, quantity, fulfilled_quantity, created_at, updated_at
        )
        VALUES (
            :line_item_id, :order_id, :variant_id, :product_title, :variant_title,
            :sku, :image_url, :quantity, :fulfilled_quantity, :created_at, :updated_at
        )
        ON CONFLICT (line_item_id)
        DO UPDATE SET
            variant_id = excluded.variant_id,
            product_title = excluded.product_title,
            variant_title = excluded.variant_title,
            sku = excluded.sku,
            image_url = excluded.image_url,
            quantity = excluded.quantity,
            updated_at = excluded.updated_at
        WHERE order_line_items.order_id = excluded.order_id
    `
	res, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), query, li)
	if err != nil {
		return apperror.FromDB(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// the id already belongs to another order; leave that line untouched
		return apperror.ConstraintViolation(fmt.Errorf("line item %s belongs to another order than %s", li.LineItemID, li.OrderID))
	}
	return nil
}

func (r *SQLRepository) UpdateLineFulfilled(ctx context.Context, lineItemID string, fulfilled int) error {
	conn := database.Conn(ctx, r.DB)
	query := conn.Rebind(`UPDATE order_line_items SET fulfilled_quantity = ?, updated_at = ? WHERE line_item_id = ?`)
	_, err := conn.ExecContext(ctx, query, fulfilled, time.Now().UTC(), lineItemID)
	return apperror.FromDB(err)
}

func (r *SQLRepository) FindOutstandingLines(ctx context.Context, variantID string) ([]model.OrderLineItem, error) {
	conn := database.Conn(ctx, r.DB)

	query := conn.Rebind(`
        SELECT li.*
        FROM order_line_items li
        JOIN orders o ON o.order_id = li.order_id
        WHERE li.variant_id = ?
          AND o.status <> ?
          AND li.fulfilled_quantity < li.quantity
        ORDER BY o.order_date ASC, li.created_at ASC, li.line_item_id ASC
    `)
	items := []model.OrderLineItem{}
	err := sqlx.SelectContext(ctx, conn, &items, query, variantID, string(model.OrderStatusArchived))
	return items, err
}

func (r *SQLRepository) FindFulfilledLines(ctx context.Context, variantID string) ([]model.OrderLineItem, error) {
	conn := database.Conn(ctx, r.DB)

	query := conn.Rebind(`
        SELECT li.*
        FROM order_line_items li
        JOIN orders o ON o.order_id = li.order_id
        WHERE li.variant_id = ?
          AND o.status <> ?
          AND li.fulfilled_quantity > 0
        ORDER BY o.order_date DESC, li.created_at DESC, li.line_item_id DESC
    `)
	items := []model.OrderLineItem{}
	err := sqlx.SelectContext(ctx, conn, &items, query, variantID, string(model.OrderStatusArchived))
	return items, err
}

func (r *SQLRepository) FindPreservedIDs(ctx context.Context) ([]string, error) {
	conn := database.Conn(ctx, r.DB)

	ids := []string{}
	query := conn.Rebind(`SELECT order_id FROM orders WHERE status = ? OR fulfilled_items > 0`)
	err := sqlx.SelectContext(ctx, conn, &ids, query, string(model.OrderStatusArchived))
	return ids, err
}

func (r *SQLRepository) DeleteUnstarted(ctx context.Context) (int64, error) {
	return r.deleteWhere(ctx, `status <> ? AND fulfilled_items = 0`, string(model.OrderStatusArchived))
}

func (r *SQLRepository) DeleteArchived(ctx context.Context) (int64, error) {
	return r.deleteWhere(ctx, `status = ?`, string(model.OrderStatusArchived))
}

// deleteWhere removes matching orders and their line items. Line items are
// deleted explicitly so the result does not depend on foreign key enforcement.
func (r *SQLRepository) deleteWhere(ctx context.Context, cond string, args ...interface{}) (int64, error) {
	conn := database.Conn(ctx, r.DB)

	lineQuery := conn.Rebind(`DELETE FROM order_line_items WHERE order_id IN (SELECT order_id FROM orders WHERE ` + cond + `)`)
	if _, err := conn.ExecContext(ctx, lineQuery, args...); err != nil {
		return 0, err
	}

	res, err := conn.ExecContext(ctx, conn.Rebind(`DELETE FROM orders WHERE `+cond), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLRepository) SumActiveByVariant(ctx context.Context) ([]model.VariantTotal, error) {
	conn := database.Conn(ctx, r.DB)

	query := conn.Rebind(`
        SELECT li.variant_id,
               MAX(li.product_title) AS product_title,
               MAX(li.variant_title) AS variant_title,
               MAX(li.sku) AS sku,
               MAX(li.image_url) AS image_url,
               SUM(li.quantity) AS total_quantity,
               SUM(li.fulfilled_quantity) AS made_quantity
        FROM order_line_items li
        JOIN orders o ON o.order_id = li.order_id
        WHERE o.status <> ?
        GROUP BY li.variant_id
        ORDER BY li.variant_id
    `)
	totals := []model.VariantTotal{}
	err := sqlx.SelectContext(ctx, conn, &totals, query, string(model.OrderStatusArchived))
	return totals, err
}
