package task

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
)

type Repository interface {
	FindByVariant(ctx context.Context, variantID string) (*model.Task, error)
	FindAll(ctx context.Context, filters *dto.TaskFilters) ([]model.Task, error)

	// Upsert inserts t as given, or refreshes metadata and total on an existing
	// row. Made quantity and status of an existing row are left alone.
	Upsert(ctx context.Context, t *model.Task) error
	UpdateProgress(ctx context.Context, t *model.Task) error

	Delete(ctx context.Context, variantID string) error
	DeleteZeroTotal(ctx context.Context) (int64, error)
}
