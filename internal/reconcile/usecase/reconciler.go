package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/ledger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order/dto"
	"github.com/fekuna/omnipos-fulfillment-service/internal/source"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
	"go.uber.org/zap"
)

// reconcile merges a fetched snapshot into the stores. Orders that are
// archived or carry progress are kept as they are; every other local order is
// replaced by the snapshot.
func (uc *syncUseCase) reconcile(ctx context.Context, orders []source.Order, run *model.SyncRun) error {
	preserved, err := uc.orders.FindPreservedIDs(ctx)
	if err != nil {
		return fmt.Errorf("find preserved orders: %w", err)
	}
	skip := make(map[string]bool, len(preserved))
	for _, id := range preserved {
		skip[id] = true
	}

	removed, err := uc.orders.DeleteUnstarted(ctx)
	if err != nil {
		return fmt.Errorf("delete unstarted orders: %w", err)
	}
	run.OrdersRemoved = int(removed)

	// Lines are stamped in snapshot order so same-date orders keep their
	// arrival order for allocation.
	stamp := time.Now().UTC()
	for i := range orders {
		o := &orders[i]
		if skip[o.OrderID] {
			run.OrdersSkipped++
			continue
		}
		if err := saveOrder(ctx, uc.orders, o, stamp); err != nil {
			return err
		}
		stamp = stamp.Add(time.Duration(len(o.LineItems)) * lineStep)
		run.OrdersSaved++
	}

	aggregates := source.AggregateByVariant(orders)
	for _, agg := range aggregates {
		_, err := uc.tasks.UpsertTask(ctx, &model.Task{
			VariantID:     agg.VariantID,
			ProductTitle:  agg.ProductTitle,
			VariantTitle:  agg.VariantTitle,
			SKU:           agg.SKU,
			ImageURL:      agg.ImageURL,
			TotalQuantity: agg.TotalQuantity,
		})
		if err != nil {
			return err
		}
	}
	run.TasksUpdated = len(aggregates)

	corrected, err := RecalculateTaskTotals(ctx, uc.orders, uc.tasks)
	if err != nil {
		return err
	}
	if corrected > 0 {
		uc.logger.Debug("task totals corrected from stored orders",
			zap.String("sync_run_id", run.ID),
			zap.Int("tasks", corrected),
		)
	}

	return rederiveOrderStatus(ctx, uc.orders)
}

// RecalculateTaskTotals rebuilds every task from the line items of
// non-archived orders and drops tasks left with no demand.
func RecalculateTaskTotals(ctx context.Context, orders order.Repository, tasks task.Store) (int, error) {
	totals, err := orders.SumActiveByVariant(ctx)
	if err != nil {
		return 0, fmt.Errorf("sum active line items: %w", err)
	}

	updated, err := tasks.ApplyTotals(ctx, totals)
	if err != nil {
		return 0, fmt.Errorf("apply task totals: %w", err)
	}
	return updated, nil
}

// lineStep separates the created_at of consecutive saved lines. Microseconds
// survive both SQLite text timestamps and Postgres timestamptz.
const lineStep = time.Microsecond

func saveOrder(ctx context.Context, repo order.Repository, o *source.Order, now time.Time) error {
	row := &model.Order{
		OrderID:    o.OrderID,
		OrderName:  o.OrderName,
		OrderDate:  o.OrderDate.UTC(),
		TotalItems: o.TotalItems(),
		Status:     model.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.Upsert(ctx, row); err != nil {
		return fmt.Errorf("save order %s: %w", o.OrderID, err)
	}

	for i, li := range o.LineItems {
		item := &model.OrderLineItem{
			LineItemID:   li.LineItemID,
			OrderID:      o.OrderID,
			VariantID:    li.VariantID,
			ProductTitle: li.ProductTitle,
			VariantTitle: li.VariantTitle,
			SKU:          li.SKU,
			ImageURL:     li.ImageURL,
			Quantity:     li.FulfillableQuantity,
			CreatedAt:    now.Add(time.Duration(i) * lineStep),
			UpdatedAt:    now,
		}
		if err := repo.UpsertLineItem(ctx, item); err != nil {
			return fmt.Errorf("save line item %s: %w", li.LineItemID, err)
		}
	}
	return nil
}

// rederiveOrderStatus brings the status of every active order in line with
// its counters.
func rederiveOrderStatus(ctx context.Context, repo order.Repository) error {
	active, _, err := repo.FindAll(ctx, &dto.OrderFilters{})
	if err != nil {
		return fmt.Errorf("list active orders: %w", err)
	}

	for _, o := range active {
		fulfilled := ledger.Clamp(o.FulfilledItems, o.TotalItems)
		status := ledger.DeriveOrderStatus(fulfilled, o.TotalItems)
		if fulfilled == o.FulfilledItems && status == o.Status {
			continue
		}
		if err := repo.UpdateProgress(ctx, o.OrderID, fulfilled, status); err != nil {
			return fmt.Errorf("update order %s: %w", o.OrderID, err)
		}
	}
	return nil
}
