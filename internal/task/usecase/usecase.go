package usecase

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/allocation"
	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/event"
	"github.com/fekuna/omnipos-fulfillment-service/internal/lock"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
	"github.com/fekuna/omnipos-fulfillment-service/internal/validation"
	"go.uber.org/zap"
)

type taskUseCase struct {
	store     task.Store
	repo      task.Repository
	engine    *allocation.Engine
	tx        *database.Transactor
	locker    lock.Locker
	publisher event.Publisher
	logger    logger.ZapLogger
}

func NewTaskUseCase(
	store task.Store,
	repo task.Repository,
	engine *allocation.Engine,
	tx *database.Transactor,
	locker lock.Locker,
	publisher event.Publisher,
	log logger.ZapLogger,
) task.UseCase {
	return &taskUseCase{
		store:     store,
		repo:      repo,
		engine:    engine,
		tx:        tx,
		locker:    locker,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *taskUseCase) MarkProduced(ctx context.Context, input *dto.MarkProducedInput) (*dto.ProductionResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	res := &dto.ProductionResult{Delta: input.Quantity}
	err := uc.mutate(ctx, func(ctx context.Context) error {
		t, err := uc.store.RecordProduced(ctx, input.VariantID, input.Quantity)
		if err != nil {
			return err
		}
		res.Task = t

		alloc, err := uc.engine.Allocate(ctx, input.VariantID, input.Quantity)
		if err != nil {
			return err
		}
		fill(res, alloc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("production recorded",
		zap.String("variant_id", input.VariantID),
		zap.Int("quantity", input.Quantity),
		zap.Int("made_quantity", res.Task.MadeQuantity),
		zap.Strings("newly_fulfilled", res.NewlyFulfilled),
		zap.String("operator_id", input.OperatorID),
	)
	uc.publishFulfilled(ctx, input.VariantID, input.Quantity, input.OperatorID, res.NewlyFulfilled)
	return res, nil
}

func (uc *taskUseCase) MarkComplete(ctx context.Context, input *dto.VariantInput) (*dto.ProductionResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	res := &dto.ProductionResult{Allocations: []model.Allocation{}, NewlyFulfilled: []string{}}
	err := uc.mutate(ctx, func(ctx context.Context) error {
		t, added, err := uc.store.MarkComplete(ctx, input.VariantID)
		if err != nil {
			return err
		}
		res.Task = t
		res.Delta = added
		if added == 0 {
			return nil
		}

		alloc, err := uc.engine.Allocate(ctx, input.VariantID, added)
		if err != nil {
			return err
		}
		fill(res, alloc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("task completed",
		zap.String("variant_id", input.VariantID),
		zap.Int("added", res.Delta),
		zap.Strings("newly_fulfilled", res.NewlyFulfilled),
		zap.String("operator_id", input.OperatorID),
	)
	uc.publishFulfilled(ctx, input.VariantID, res.Delta, input.OperatorID, res.NewlyFulfilled)
	return res, nil
}

func (uc *taskUseCase) ResetTask(ctx context.Context, input *dto.VariantInput) (*dto.ProductionResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	res := &dto.ProductionResult{Allocations: []model.Allocation{}, NewlyFulfilled: []string{}}
	err := uc.mutate(ctx, func(ctx context.Context) error {
		t, removed, err := uc.store.Reset(ctx, input.VariantID)
		if err != nil {
			return err
		}
		res.Task = t
		res.Delta = -removed
		if removed == 0 {
			return nil
		}

		alloc, err := uc.engine.Deallocate(ctx, input.VariantID, removed)
		if err != nil {
			return err
		}
		fill(res, alloc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("task reset",
		zap.String("variant_id", input.VariantID),
		zap.Int("removed", -res.Delta),
		zap.String("operator_id", input.OperatorID),
	)
	return res, nil
}

func (uc *taskUseCase) GetTask(ctx context.Context, variantID string) (*model.Task, error) {
	if variantID == "" {
		return nil, apperror.InvalidArgument("variant_id")
	}
	return uc.store.Get(ctx, variantID)
}

func (uc *taskUseCase) ListTasks(ctx context.Context, filters *dto.TaskFilters) ([]model.Task, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *taskUseCase) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	return lock.WithLock(ctx, uc.locker, lock.StoreKey, func(ctx context.Context) error {
		return uc.tx.WithinTx(ctx, fn)
	})
}

// publishFulfilled runs after commit. A failed publish is logged and does not
// undo the production.
func (uc *taskUseCase) publishFulfilled(ctx context.Context, variantID string, qty int, operatorID string, orderIDs []string) {
	if len(orderIDs) == 0 {
		return
	}

	evt := event.NewOrdersFulfilled(event.OrdersFulfilledPayload{
		VariantID:  variantID,
		Quantity:   qty,
		OrderIDs:   orderIDs,
		OperatorID: operatorID,
	})
	if err := uc.publisher.Publish(ctx, variantID, evt); err != nil {
		uc.logger.Error("failed to publish orders fulfilled event",
			zap.String("variant_id", variantID),
			zap.Error(err),
		)
	}
}

func fill(res *dto.ProductionResult, alloc *allocation.Result) {
	res.Allocations = alloc.Allocations
	res.NewlyFulfilled = alloc.NewlyFulfilled
	res.Unallocated = alloc.Unallocated
}
