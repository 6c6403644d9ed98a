// Package allocation distributes produced units over outstanding order line
// items and takes them back again.
package allocation

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/ledger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order"
	"go.uber.org/zap"
)

type Result struct {
	Allocations []model.Allocation
	// NewlyFulfilled holds orders that reached fulfilled during this call.
	NewlyFulfilled []string
	// Unallocated is the part of the quantity no line item could take.
	Unallocated int
}

// Engine must run inside the caller's transaction; it performs several writes
// per call.
type Engine struct {
	orders order.Repository
	logger logger.ZapLogger
}

func NewEngine(orders order.Repository, log logger.ZapLogger) *Engine {
	return &Engine{orders: orders, logger: log}
}

// Allocate fills the oldest outstanding line items of the variant first.
func (e *Engine) Allocate(ctx context.Context, variantID string, qty int) (*Result, error) {
	if qty <= 0 {
		return nil, apperror.InvalidQuantity(qty)
	}

	lines, err := e.orders.FindOutstandingLines(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("find outstanding lines: %w", err)
	}

	res := &Result{Allocations: []model.Allocation{}, NewlyFulfilled: []string{}}
	deltas := newOrderDeltas()
	remaining := qty

	for _, li := range lines {
		if remaining == 0 {
			break
		}
		room := ledger.Room(li.Quantity, li.FulfilledQuantity)
		if room == 0 {
			continue
		}

		take := min(room, remaining)
		if err := e.orders.UpdateLineFulfilled(ctx, li.LineItemID, li.FulfilledQuantity+take); err != nil {
			return nil, fmt.Errorf("update line item %s: %w", li.LineItemID, err)
		}

		res.Allocations = append(res.Allocations, model.Allocation{OrderID: li.OrderID, LineItemID: li.LineItemID, Quantity: take})
		deltas.add(li.OrderID, take)
		remaining -= take
	}
	res.Unallocated = remaining

	newly, err := e.applyDeltas(ctx, deltas)
	if err != nil {
		return nil, err
	}
	res.NewlyFulfilled = newly

	if remaining > 0 {
		e.logger.Warn("produced quantity exceeds outstanding demand",
			zap.String("variant_id", variantID),
			zap.Int("quantity", qty),
			zap.Int("unallocated", remaining),
		)
	}
	return res, nil
}

// Deallocate takes fulfilled quantity back from the newest orders first. It
// is a heuristic, not an exact undo of earlier Allocate calls.
func (e *Engine) Deallocate(ctx context.Context, variantID string, qty int) (*Result, error) {
	if qty <= 0 {
		return nil, apperror.InvalidQuantity(qty)
	}

	lines, err := e.orders.FindFulfilledLines(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("find fulfilled lines: %w", err)
	}

	res := &Result{Allocations: []model.Allocation{}, NewlyFulfilled: []string{}}
	deltas := newOrderDeltas()
	remaining := qty

	for _, li := range lines {
		if remaining == 0 {
			break
		}

		take := min(li.FulfilledQuantity, remaining)
		if take <= 0 {
			continue
		}
		if err := e.orders.UpdateLineFulfilled(ctx, li.LineItemID, li.FulfilledQuantity-take); err != nil {
			return nil, fmt.Errorf("update line item %s: %w", li.LineItemID, err)
		}

		res.Allocations = append(res.Allocations, model.Allocation{OrderID: li.OrderID, LineItemID: li.LineItemID, Quantity: -take})
		deltas.add(li.OrderID, -take)
		remaining -= take
	}
	res.Unallocated = remaining

	if _, err := e.applyDeltas(ctx, deltas); err != nil {
		return nil, err
	}
	return res, nil
}

// applyDeltas moves each touched order's counter and re-derives its status.
// It returns the orders that entered fulfilled.
func (e *Engine) applyDeltas(ctx context.Context, d *orderDeltas) ([]string, error) {
	newly := []string{}
	for _, orderID := range d.order {
		o, err := e.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("find order %s: %w", orderID, err)
		}
		if o == nil {
			return nil, apperror.NotFound("order", orderID)
		}

		before := o.Status
		fulfilled := ledger.Clamp(o.FulfilledItems+d.delta[orderID], o.TotalItems)
		status := ledger.DeriveOrderStatus(fulfilled, o.TotalItems)
		if o.IsArchived() {
			status = o.Status
		}

		if err := e.orders.UpdateProgress(ctx, orderID, fulfilled, status); err != nil {
			return nil, fmt.Errorf("update order %s: %w", orderID, err)
		}
		if before != model.OrderStatusFulfilled && status == model.OrderStatusFulfilled {
			newly = append(newly, orderID)
		}
	}
	return newly, nil
}

// orderDeltas accumulates per-order changes in first-touched order.
type orderDeltas struct {
	order []string
	delta map[string]int
}

func newOrderDeltas() *orderDeltas {
	return &orderDeltas{delta: map[string]int{}}
}

func (d *orderDeltas) add(orderID string, n int) {
	if _, ok := d.delta[orderID]; !ok {
		d.order = append(d.order, orderID)
	}
	d.delta[orderID] += n
}
