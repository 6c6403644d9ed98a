package task

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
)

// Store owns the per-variant production ledger. Every method derives the
// task status from the new quantities before writing.
type Store interface {
	Get(ctx context.Context, variantID string) (*model.Task, error)

	// UpsertTask creates the task or refreshes its metadata and total while
	// keeping made quantity.
	UpsertTask(ctx context.Context, t *model.Task) (*model.Task, error)

	// RecordProduced adds qty to made. It fails with NotFound or
	// ExceedsCapacity and leaves the task unchanged in that case.
	RecordProduced(ctx context.Context, variantID string, qty int) (*model.Task, error)

	// MarkComplete raises made to total and returns how much was added.
	MarkComplete(ctx context.Context, variantID string) (*model.Task, int, error)

	// Reset drops made to zero and returns how much was removed.
	Reset(ctx context.Context, variantID string) (*model.Task, int, error)

	// Release takes an archived line item out of its task.
	Release(ctx context.Context, li model.OrderLineItem) error

	// Restore adds an unarchived line item back, creating the task when needed.
	Restore(ctx context.Context, li model.OrderLineItem) error

	// ApplyTotals sets every task's total to the given demand, creates tasks
	// for uncovered variants and removes tasks left without demand. It
	// returns how many tasks were written.
	ApplyTotals(ctx context.Context, totals []model.VariantTotal) (int, error)

	DeleteZeroTotal(ctx context.Context) (int64, error)
}
