package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/ledger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/lock"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order/dto"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
	"github.com/fekuna/omnipos-fulfillment-service/internal/validation"
	"go.uber.org/zap"
)

type orderUseCase struct {
	repo   order.Repository
	tasks  task.Store
	tx     *database.Transactor
	locker lock.Locker
	logger logger.ZapLogger
}

func NewOrderUseCase(repo order.Repository, tasks task.Store, tx *database.Transactor, locker lock.Locker, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:   repo,
		tasks:  tasks,
		tx:     tx,
		locker: locker,
		logger: log,
	}
}

func (uc *orderUseCase) ArchiveOrder(ctx context.Context, input *dto.OrderInput) (*dto.ArchiveResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var res *dto.ArchiveResult
	err := uc.mutate(ctx, func(ctx context.Context) error {
		var err error
		res, err = uc.archive(ctx, input.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order archived",
		zap.String("order_id", input.OrderID),
		zap.Bool("already_archived", res.AlreadyArchived),
		zap.String("operator_id", input.OperatorID),
	)
	return res, nil
}

func (uc *orderUseCase) UnarchiveOrder(ctx context.Context, input *dto.OrderInput) (*dto.ArchiveResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var res *dto.ArchiveResult
	err := uc.mutate(ctx, func(ctx context.Context) error {
		var err error
		res, err = uc.unarchive(ctx, input.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order unarchived",
		zap.String("order_id", input.OrderID),
		zap.Bool("not_archived", res.NotArchived),
		zap.String("operator_id", input.OperatorID),
	)
	return res, nil
}

func (uc *orderUseCase) ArchiveAllFulfilled(ctx context.Context) (int, error) {
	count := 0
	err := uc.mutate(ctx, func(ctx context.Context) error {
		orders, _, err := uc.repo.FindAll(ctx, &dto.OrderFilters{Status: string(model.OrderStatusFulfilled)})
		if err != nil {
			return err
		}
		for _, o := range orders {
			if _, err := uc.archive(ctx, o.OrderID); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	uc.logger.Info("archived fulfilled orders", zap.Int("count", count))
	return count, nil
}

func (uc *orderUseCase) UnarchiveAll(ctx context.Context) (int, error) {
	count := 0
	err := uc.mutate(ctx, func(ctx context.Context) error {
		orders, _, err := uc.repo.FindAll(ctx, &dto.OrderFilters{Status: string(model.OrderStatusArchived)})
		if err != nil {
			return err
		}
		for _, o := range orders {
			if _, err := uc.unarchive(ctx, o.OrderID); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	uc.logger.Info("unarchived orders", zap.Int("count", count))
	return count, nil
}

func (uc *orderUseCase) DeleteArchived(ctx context.Context) (int64, error) {
	var deleted int64
	err := uc.mutate(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = uc.repo.DeleteArchived(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	uc.logger.Info("archived orders deleted", zap.Int64("count", deleted))
	return deleted, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if orderID == "" {
		return nil, apperror.InvalidArgument("order_id")
	}

	o, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFound("order", orderID)
	}

	o.LineItems, err = uc.repo.FindLineItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

// archive removes the order's quantities from the task ledger and flags it
// archived. Line items keep their quantities so unarchive can restore them.
func (uc *orderUseCase) archive(ctx context.Context, orderID string) (*dto.ArchiveResult, error) {
	o, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFound("order", orderID)
	}
	if o.IsArchived() {
		return &dto.ArchiveResult{Order: o, AlreadyArchived: true}, nil
	}

	items, err := uc.repo.FindLineItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, li := range items {
		if err := uc.tasks.Release(ctx, li); err != nil {
			return nil, fmt.Errorf("release line item %s: %w", li.LineItemID, err)
		}
	}

	if err := uc.repo.UpdateStatus(ctx, orderID, model.OrderStatusArchived); err != nil {
		return nil, err
	}
	if _, err := uc.tasks.DeleteZeroTotal(ctx); err != nil {
		return nil, err
	}

	o.Status = model.OrderStatusArchived
	o.LineItems = items
	return &dto.ArchiveResult{Order: o}, nil
}

func (uc *orderUseCase) unarchive(ctx context.Context, orderID string) (*dto.ArchiveResult, error) {
	o, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFound("order", orderID)
	}
	if !o.IsArchived() {
		return &dto.ArchiveResult{Order: o, NotArchived: true}, nil
	}

	items, err := uc.repo.FindLineItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, li := range items {
		if err := uc.tasks.Restore(ctx, li); err != nil {
			return nil, fmt.Errorf("restore line item %s: %w", li.LineItemID, err)
		}
	}

	status := ledger.DeriveOrderStatus(o.FulfilledItems, o.TotalItems)
	if err := uc.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	o.Status = status
	o.LineItems = items
	return &dto.ArchiveResult{Order: o}, nil
}

func (uc *orderUseCase) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	return lock.WithLock(ctx, uc.locker, lock.StoreKey, func(ctx context.Context) error {
		return uc.tx.WithinTx(ctx, fn)
	})
}
