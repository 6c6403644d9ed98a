package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/lock"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order"
	"github.com/fekuna/omnipos-fulfillment-service/internal/reconcile"
	"github.com/fekuna/omnipos-fulfillment-service/internal/source"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type syncUseCase struct {
	source  source.OrderSource
	orders  order.Repository
	tasks   task.Store
	history reconcile.Repository
	tx      *database.Transactor
	locker  lock.Locker
	logger  logger.ZapLogger
}

func NewSyncUseCase(
	src source.OrderSource,
	orders order.Repository,
	tasks task.Store,
	history reconcile.Repository,
	tx *database.Transactor,
	locker lock.Locker,
	log logger.ZapLogger,
) reconcile.UseCase {
	return &syncUseCase{
		source:  src,
		orders:  orders,
		tasks:   tasks,
		history: history,
		tx:      tx,
		locker:  locker,
		logger:  log,
	}
}

func (uc *syncUseCase) Sync(ctx context.Context) (*model.SyncRun, error) {
	run := &model.SyncRun{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	log := uc.logger.With(zap.String("sync_run_id", run.ID))

	// 1. Fetch. Nothing local is touched until the snapshot is in hand.
	snap, err := uc.source.FetchUnfulfilled(ctx)
	if err != nil {
		err = fmt.Errorf("fetch unfulfilled orders: %w", err)
		uc.record(ctx, run, err)
		log.Error("sync fetch failed", zap.Error(err))
		return run, err
	}
	orders := source.Normalize(snap.Orders)
	run.OrdersFetched = len(orders)

	// 2. Reconcile in one transaction under the store lock.
	err = lock.WithLock(ctx, uc.locker, lock.StoreKey, func(ctx context.Context) error {
		return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
			return uc.reconcile(ctx, orders, run)
		})
	})
	if err != nil {
		err = fmt.Errorf("reconcile: %w", err)
		uc.record(ctx, run, err)
		log.Error("sync reconcile failed", zap.Error(err))
		return run, err
	}

	uc.record(ctx, run, nil)
	log.Info("sync completed",
		zap.Int("orders_fetched", run.OrdersFetched),
		zap.Int("orders_saved", run.OrdersSaved),
		zap.Int("orders_skipped", run.OrdersSkipped),
		zap.Int("orders_removed", run.OrdersRemoved),
		zap.Int("tasks_updated", run.TasksUpdated),
		zap.Int64("duration_ms", run.DurationMs),
	)
	return run, nil
}

func (uc *syncUseCase) ListSyncRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	return uc.history.FindRecent(ctx, limit)
}

// record finishes the run and writes it outside any reconcile transaction, so
// failed runs survive the rollback.
func (uc *syncUseCase) record(ctx context.Context, run *model.SyncRun, err error) {
	run.FinishedAt = time.Now().UTC()
	run.DurationMs = run.FinishedAt.Sub(run.StartedAt).Milliseconds()
	run.Status = model.SyncRunStatusSuccess
	if err != nil {
		msg := err.Error()
		run.Status = model.SyncRunStatusFailed
		run.ErrorMessage = &msg
	}

	if herr := uc.history.Create(context.WithoutCancel(ctx), run); herr != nil {
		uc.logger.Error("failed to record sync run", zap.String("sync_run_id", run.ID), zap.Error(herr))
	}
}
