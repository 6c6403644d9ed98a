package model

// Allocation records quantity moved onto (positive) or off (negative) one line item.
type Allocation struct {
	OrderID    string `json:"order_id"`
	LineItemID string `json:"line_item_id"`
	Quantity   int    `json:"quantity"`
}
