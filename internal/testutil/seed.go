package testutil

import (
	"testing"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/ledger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// Line describes one seeded line item.
type Line struct {
	ID        string
	Variant   string
	Qty       int
	Fulfilled int
}

// SeedOrder inserts an order and its lines with counters and status derived
// from the lines. Lines are created in argument order.
func SeedOrder(t testing.TB, db *sqlx.DB, orderID string, date time.Time, lines ...Line) {
	t.Helper()

	total, fulfilled := 0, 0
	for _, l := range lines {
		total += l.Qty
		fulfilled += l.Fulfilled
	}

	now := time.Now().UTC()
	_, err := db.NamedExec(`
        INSERT INTO orders (order_id, order_name, order_date, total_items, fulfilled_items, status, created_at, updated_at)
        VALUES (:order_id, :order_name, :order_date, :total_items, :fulfilled_items, :status, :created_at, :updated_at)`,
		&model.Order{
			OrderID:        orderID,
			OrderName:      "#" + orderID,
			OrderDate:      date.UTC(),
			TotalItems:     total,
			FulfilledItems: fulfilled,
			Status:         ledger.DeriveOrderStatus(fulfilled, total),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	if err != nil {
		t.Fatalf("seed order %s: %v", orderID, err)
	}

	for i, l := range lines {
		_, err := db.NamedExec(`
            INSERT INTO order_line_items (line_item_id, order_id, variant_id, product_title, variant_title, sku, image_url,
                quantity, fulfilled_quantity, created_at, updated_at)
            VALUES (:line_item_id, :order_id, :variant_id, :product_title, :variant_title, :sku, :image_url,
                :quantity, :fulfilled_quantity, :created_at, :updated_at)`,
			&model.OrderLineItem{
				LineItemID:        l.ID,
				OrderID:           orderID,
				VariantID:         l.Variant,
				ProductTitle:      "Product " + l.Variant,
				VariantTitle:      "Default Title",
				SKU:               "SKU-" + l.Variant,
				Quantity:          l.Qty,
				FulfilledQuantity: l.Fulfilled,
				CreatedAt:         now.Add(time.Duration(i) * time.Millisecond),
				UpdatedAt:         now,
			})
		if err != nil {
			t.Fatalf("seed line %s: %v", l.ID, err)
		}
	}
}

// SeedTask inserts a task with a derived status.
func SeedTask(t testing.TB, db *sqlx.DB, variantID string, total, made int) {
	t.Helper()

	now := time.Now().UTC()
	_, err := db.NamedExec(`
        INSERT INTO tasks (variant_id, product_title, variant_title, sku, image_url, total_quantity, made_quantity, status, created_at, updated_at)
        VALUES (:variant_id, :product_title, :variant_title, :sku, :image_url, :total_quantity, :made_quantity, :status, :created_at, :updated_at)`,
		&model.Task{
			VariantID:     variantID,
			ProductTitle:  "Product " + variantID,
			VariantTitle:  "Default Title",
			SKU:           "SKU-" + variantID,
			TotalQuantity: total,
			MadeQuantity:  made,
			Status:        ledger.DeriveTaskStatus(made, total),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	if err != nil {
		t.Fatalf("seed task %s: %v", variantID, err)
	}
}

// SetOrderStatus overwrites an order's status, e.g. to seed an archived order.
func SetOrderStatus(t testing.TB, db *sqlx.DB, orderID string, status model.OrderStatus) {
	t.Helper()
	if _, err := db.Exec(db.Rebind(`UPDATE orders SET status = ? WHERE order_id = ?`), string(status), orderID); err != nil {
		t.Fatalf("set order status %s: %v", orderID, err)
	}
}

// GetTask returns the task or nil.
func GetTask(t testing.TB, db *sqlx.DB, variantID string) *model.Task {
	t.Helper()
	var tasks []model.Task
	if err := db.Select(&tasks, db.Rebind(`SELECT * FROM tasks WHERE variant_id = ?`), variantID); err != nil {
		t.Fatalf("get task %s: %v", variantID, err)
	}
	if len(tasks) == 0 {
		return nil
	}
	return &tasks[0]
}

// GetOrder returns the order with its line items, or nil.
func GetOrder(t testing.TB, db *sqlx.DB, orderID string) *model.Order {
	t.Helper()
	var orders []model.Order
	if err := db.Select(&orders, db.Rebind(`SELECT * FROM orders WHERE order_id = ?`), orderID); err != nil {
		t.Fatalf("get order %s: %v", orderID, err)
	}
	if len(orders) == 0 {
		return nil
	}
	o := &orders[0]
	if err := db.Select(&o.LineItems, db.Rebind(`SELECT * FROM order_line_items WHERE order_id = ? ORDER BY created_at, line_item_id`), orderID); err != nil {
		t.Fatalf("get lines %s: %v", orderID, err)
	}
	return o
}

// AssertConsistent checks the ledger invariants across all three views: every
// task matches the sums over active line items, every active order matches its
// lines, and every stored status equals the derived one.
func AssertConsistent(t testing.TB, db *sqlx.DB) {
	t.Helper()

	var tasks []model.Task
	if err := db.Select(&tasks, `SELECT * FROM tasks`); err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	type sums struct {
		VariantID string `db:"variant_id"`
		Total     int    `db:"total"`
		Made      int    `db:"made"`
	}
	var active []sums
	err := db.Select(&active, db.Rebind(`
        SELECT li.variant_id, SUM(li.quantity) AS total, SUM(li.fulfilled_quantity) AS made
        FROM order_line_items li JOIN orders o ON o.order_id = li.order_id
        WHERE o.status <> ?
        GROUP BY li.variant_id`), string(model.OrderStatusArchived))
	if err != nil {
		t.Fatalf("sum lines: %v", err)
	}

	byVariant := map[string]sums{}
	for _, s := range active {
		if s.Total > 0 {
			byVariant[s.VariantID] = s
		}
	}

	for _, task := range tasks {
		s, ok := byVariant[task.VariantID]
		if !ok {
			t.Errorf("task %s has no active line items", task.VariantID)
			continue
		}
		if task.TotalQuantity != s.Total || task.MadeQuantity != s.Made {
			t.Errorf("task %s = %d/%d, line items = %d/%d", task.VariantID, task.MadeQuantity, task.TotalQuantity, s.Made, s.Total)
		}
		if task.MadeQuantity < 0 || task.MadeQuantity > task.TotalQuantity {
			t.Errorf("task %s made %d outside [0, %d]", task.VariantID, task.MadeQuantity, task.TotalQuantity)
		}
		if want := ledger.DeriveTaskStatus(task.MadeQuantity, task.TotalQuantity); task.Status != want {
			t.Errorf("task %s status %s, want %s", task.VariantID, task.Status, want)
		}
		delete(byVariant, task.VariantID)
	}
	for variant := range byVariant {
		t.Errorf("variant %s has active line items but no task", variant)
	}

	var orders []model.Order
	if err := db.Select(&orders, db.Rebind(`SELECT * FROM orders WHERE status <> ?`), string(model.OrderStatusArchived)); err != nil {
		t.Fatalf("list orders: %v", err)
	}
	for _, o := range orders {
		var lineSum struct {
			Total int `db:"total"`
			Made  int `db:"made"`
		}
		err := db.Get(&lineSum, db.Rebind(`
            SELECT COALESCE(SUM(quantity), 0) AS total, COALESCE(SUM(fulfilled_quantity), 0) AS made
            FROM order_line_items WHERE order_id = ?`), o.OrderID)
		if err != nil {
			t.Fatalf("sum order %s: %v", o.OrderID, err)
		}
		if o.TotalItems != lineSum.Total || o.FulfilledItems != lineSum.Made {
			t.Errorf("order %s = %d/%d, line items = %d/%d", o.OrderID, o.FulfilledItems, o.TotalItems, lineSum.Made, lineSum.Total)
		}
		if want := ledger.DeriveOrderStatus(o.FulfilledItems, o.TotalItems); o.Status != want {
			t.Errorf("order %s status %s, want %s", o.OrderID, o.Status, want)
		}
	}
}
