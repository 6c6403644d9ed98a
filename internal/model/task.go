package model

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Task is the per-variant production aggregate. Quantities are derived from the
// line items of non-archived orders for the same variant.
type Task struct {
	VariantID     string     `db:"variant_id" json:"variant_id"`
	ProductTitle  string     `db:"product_title" json:"product_title"`
	VariantTitle  string     `db:"variant_title" json:"variant_title"`
	SKU           string     `db:"sku" json:"sku"`
	ImageURL      string     `db:"image_url" json:"image_url"`
	TotalQuantity int        `db:"total_quantity" json:"total_quantity"`
	MadeQuantity  int        `db:"made_quantity" json:"made_quantity"`
	Status        TaskStatus `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Remaining is the quantity still to be produced.
func (t *Task) Remaining() int {
	if t.MadeQuantity >= t.TotalQuantity {
		return 0
	}
	return t.TotalQuantity - t.MadeQuantity
}

// VariantTotal is the sum of quantities over the active line items of one variant,
// with display metadata taken from those line items.
type VariantTotal struct {
	VariantID     string `db:"variant_id"`
	ProductTitle  string `db:"product_title"`
	VariantTitle  string `db:"variant_title"`
	SKU           string `db:"sku"`
	ImageURL      string `db:"image_url"`
	TotalQuantity int    `db:"total_quantity"`
	MadeQuantity  int    `db:"made_quantity"`
}
