package task

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
)

type UseCase interface {
	MarkProduced(ctx context.Context, input *dto.MarkProducedInput) (*dto.ProductionResult, error)
	MarkComplete(ctx context.Context, input *dto.VariantInput) (*dto.ProductionResult, error)
	ResetTask(ctx context.Context, input *dto.VariantInput) (*dto.ProductionResult, error)
	GetTask(ctx context.Context, variantID string) (*model.Task, error)
	ListTasks(ctx context.Context, filters *dto.TaskFilters) ([]model.Task, error)
}
