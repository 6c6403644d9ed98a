package order

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order/dto"
)

type UseCase interface {
	ArchiveOrder(ctx context.Context, input *dto.OrderInput) (*dto.ArchiveResult, error)
	UnarchiveOrder(ctx context.Context, input *dto.OrderInput) (*dto.ArchiveResult, error)
	ArchiveAllFulfilled(ctx context.Context) (int, error)
	UnarchiveAll(ctx context.Context) (int, error)
	DeleteArchived(ctx context.Context) (int64, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
}
