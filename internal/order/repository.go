package order

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order/dto"
)

type Repository interface {
	// Orders
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	Upsert(ctx context.Context, o *model.Order) error
	UpdateProgress(ctx context.Context, orderID string, fulfilled int, status model.OrderStatus) error
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error

	// Line items
	FindLineItems(ctx context.Context, orderID string) ([]model.OrderLineItem, error)
	UpsertLineItem(ctx context.Context, li *model.OrderLineItem) error
	UpdateLineFulfilled(ctx context.Context, lineItemID string, fulfilled int) error

	// FindOutstandingLines returns unmet line items of active orders, oldest order first.
	FindOutstandingLines(ctx context.Context, variantID string) ([]model.OrderLineItem, error)
	// FindFulfilledLines returns line items of active orders carrying progress, newest order first.
	FindFulfilledLines(ctx context.Context, variantID string) ([]model.OrderLineItem, error)

	// Reconciliation
	FindPreservedIDs(ctx context.Context) ([]string, error)
	DeleteUnstarted(ctx context.Context) (int64, error)
	DeleteArchived(ctx context.Context) (int64, error)
	SumActiveByVariant(ctx context.Context) ([]model.VariantTotal, error)
}
