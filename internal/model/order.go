package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusFulfilled  OrderStatus = "fulfilled"
	OrderStatusArchived   OrderStatus = "archived"
)

type Order struct {
	OrderID        string          `db:"order_id" json:"order_id"`
	OrderName      string          `db:"order_name" json:"order_name"`
	OrderDate      time.Time       `db:"order_date" json:"order_date"`
	TotalItems     int             `db:"total_items" json:"total_items"`
	FulfilledItems int             `db:"fulfilled_items" json:"fulfilled_items"`
	Status         OrderStatus     `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
	LineItems      []OrderLineItem `db:"-" json:"line_items,omitempty"` // Loaded separately
}

func (o *Order) IsArchived() bool {
	return o.Status == OrderStatusArchived
}

type OrderLineItem struct {
	LineItemID        string    `db:"line_item_id" json:"line_item_id"`
	OrderID           string    `db:"order_id" json:"order_id"`
	VariantID         string    `db:"variant_id" json:"variant_id"`
	ProductTitle      string    `db:"product_title" json:"product_title"`
	VariantTitle      string    `db:"variant_title" json:"variant_title"`
	SKU               string    `db:"sku" json:"sku"`
	ImageURL          string    `db:"image_url" json:"image_url"`
	Quantity          int       `db:"quantity" json:"quantity"`
	FulfilledQuantity int       `db:"fulfilled_quantity" json:"fulfilled_quantity"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
