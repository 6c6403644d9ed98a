package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	orders := []Order{
		{OrderID: "late", OrderDate: day(10), LineItems: []LineItem{
			{LineItemID: "l3", VariantID: "v1", FulfillableQuantity: 2},
		}},
		{OrderID: "early", OrderDate: day(1), LineItems: []LineItem{
			{LineItemID: "l1", VariantID: "v1", FulfillableQuantity: 1},
			{LineItemID: "l2", VariantID: "v2", FulfillableQuantity: 0},
			{LineItemID: "lx", VariantID: "", FulfillableQuantity: 4},
		}},
		{OrderID: "empty", OrderDate: day(5), LineItems: []LineItem{
			{LineItemID: "l4", VariantID: "v3", FulfillableQuantity: -1},
		}},
	}

	got := Normalize(orders)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].OrderID)
	assert.Len(t, got[0].LineItems, 1)
	assert.Equal(t, "late", got[1].OrderID)
}

func TestAggregateByVariant(t *testing.T) {
	orders := []Order{
		{OrderID: "a", LineItems: []LineItem{
			{LineItemID: "1", VariantID: "v1", ProductTitle: "Mug", FulfillableQuantity: 2},
			{LineItemID: "2", VariantID: "v2", ProductTitle: "Cup", FulfillableQuantity: 1},
		}},
		{OrderID: "b", LineItems: []LineItem{
			{LineItemID: "3", VariantID: "v1", ProductTitle: "Mug (renamed)", FulfillableQuantity: 5},
		}},
	}

	agg := AggregateByVariant(orders)
	require.Len(t, agg, 2)
	assert.Equal(t, "v1", agg[0].VariantID)
	assert.Equal(t, 7, agg[0].TotalQuantity)
	assert.Equal(t, "Mug", agg[0].ProductTitle)
	assert.Equal(t, 1, agg[1].TotalQuantity)
	assert.Equal(t, 3, orders[0].TotalItems())
	assert.Equal(t, 5, orders[1].TotalItems())
}
