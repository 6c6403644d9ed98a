// Package source defines what the fulfillment core needs from the system of
// record for orders, and the pure transformations applied to its snapshots.
package source

import (
	"context"
	"sort"
	"time"
)

// OrderSource returns the current unfulfilled orders. Implementations must only
// return orders and line items with a positive fulfillable quantity.
type OrderSource interface {
	FetchUnfulfilled(ctx context.Context) (*Snapshot, error)
}

type Snapshot struct {
	Orders []Order `json:"orders" yaml:"orders"`
}

type Order struct {
	OrderID   string     `json:"order_id" yaml:"order_id"`
	OrderName string     `json:"order_name" yaml:"order_name"`
	OrderDate time.Time  `json:"order_date" yaml:"order_date"`
	LineItems []LineItem `json:"line_items" yaml:"line_items"`
}

type LineItem struct {
	LineItemID          string `json:"line_item_id" yaml:"line_item_id"`
	VariantID           string `json:"variant_id" yaml:"variant_id"`
	VariantTitle        string `json:"variant_title" yaml:"variant_title"`
	ProductTitle        string `json:"product_title" yaml:"product_title"`
	SKU                 string `json:"sku" yaml:"sku"`
	ImageURL            string `json:"image_url" yaml:"image_url"`
	FulfillableQuantity int    `json:"fulfillable_quantity" yaml:"fulfillable_quantity"`
}

// Aggregate is the per-variant demand summed across a snapshot.
type Aggregate struct {
	VariantID     string
	ProductTitle  string
	VariantTitle  string
	SKU           string
	ImageURL      string
	TotalQuantity int
}

// Normalize drops line items without a variant or with non-positive quantity,
// then drops orders left without line items. Orders come back sorted by date.
func Normalize(orders []Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.OrderID == "" {
			continue
		}
		items := make([]LineItem, 0, len(o.LineItems))
		for _, li := range o.LineItems {
			if li.LineItemID == "" || li.VariantID == "" || li.FulfillableQuantity <= 0 {
				continue
			}
			items = append(items, li)
		}
		if len(items) == 0 {
			continue
		}
		o.LineItems = items
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderDate.Before(out[j].OrderDate)
	})
	return out
}

// AggregateByVariant sums fulfillable quantity per variant, in order of first
// appearance. Display metadata comes from the first line seen for the variant.
func AggregateByVariant(orders []Order) []Aggregate {
	index := map[string]int{}
	var out []Aggregate
	for _, o := range orders {
		for _, li := range o.LineItems {
			if li.FulfillableQuantity <= 0 {
				continue
			}
			i, ok := index[li.VariantID]
			if !ok {
				index[li.VariantID] = len(out)
				out = append(out, Aggregate{
					VariantID:    li.VariantID,
					ProductTitle: li.ProductTitle,
					VariantTitle: li.VariantTitle,
					SKU:          li.SKU,
					ImageURL:     li.ImageURL,
				})
				i = len(out) - 1
			}
			out[i].TotalQuantity += li.FulfillableQuantity
		}
	}
	return out
}

// TotalItems sums the fulfillable quantity of one order.
func (o *Order) TotalItems() int {
	total := 0
	for _, li := range o.LineItems {
		total += li.FulfillableQuantity
	}
	return total
}
