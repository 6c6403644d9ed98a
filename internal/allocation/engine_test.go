package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	orderRepoPkg "github.com/fekuna/omnipos-fulfillment-service/internal/order/repository"
	"github.com/fekuna/omnipos-fulfillment-service/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jan1  = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	jan10 = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	jan20 = time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
)

func setup(t *testing.T) (*sqlx.DB, *Engine, *database.Transactor) {
	t.Helper()
	db := testutil.NewDB(t)
	return db, NewEngine(orderRepoPkg.NewSQLRepository(db), logger.NewNop()), database.NewTransactor(db)
}

func allocate(t *testing.T, e *Engine, tx *database.Transactor, variant string, qty int) *Result {
	t.Helper()
	var res *Result
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		var err error
		res, err = e.Allocate(ctx, variant, qty)
		return err
	})
	require.NoError(t, err)
	return res
}

func TestAllocate_OldestOrderFirst(t *testing.T) {
	db, e, tx := setup(t)
	// inserted newest first so date, not insertion, drives the order
	testutil.SeedOrder(t, db, "o2", jan10, testutil.Line{ID: "l2", Variant: "v1", Qty: 5})
	testutil.SeedOrder(t, db, "o1", jan1, testutil.Line{ID: "l1", Variant: "v1", Qty: 5})

	res := allocate(t, e, tx, "v1", 3)
	assert.Equal(t, []model.Allocation{{OrderID: "o1", LineItemID: "l1", Quantity: 3}}, res.Allocations)
	assert.Empty(t, res.NewlyFulfilled)
	assert.Equal(t, 0, res.Unallocated)

	assert.Equal(t, 3, testutil.GetOrder(t, db, "o1").LineItems[0].FulfilledQuantity)
	assert.Equal(t, 0, testutil.GetOrder(t, db, "o2").LineItems[0].FulfilledQuantity)
	assert.Equal(t, model.OrderStatusInProgress, testutil.GetOrder(t, db, "o1").Status)

	res = allocate(t, e, tx, "v1", 5)
	assert.Equal(t, []model.Allocation{
		{OrderID: "o1", LineItemID: "l1", Quantity: 2},
		{OrderID: "o2", LineItemID: "l2", Quantity: 3},
	}, res.Allocations)
	assert.Equal(t, []string{"o1"}, res.NewlyFulfilled)

	o1 := testutil.GetOrder(t, db, "o1")
	o2 := testutil.GetOrder(t, db, "o2")
	assert.Equal(t, 5, o1.FulfilledItems)
	assert.Equal(t, model.OrderStatusFulfilled, o1.Status)
	assert.Equal(t, 3, o2.FulfilledItems)
	assert.Equal(t, model.OrderStatusInProgress, o2.Status)
}

func TestAllocate_ReportsEachOrderOnce(t *testing.T) {
	db, e, tx := setup(t)
	testutil.SeedOrder(t, db, "o1", jan1,
		testutil.Line{ID: "l1", Variant: "v1", Qty: 2},
		testutil.Line{ID: "l2", Variant: "v2", Qty: 1},
	)

	res := allocate(t, e, tx, "v1", 2)
	assert.Empty(t, res.NewlyFulfilled, "order still waits for v2")

	res = allocate(t, e, tx, "v2", 1)
	assert.Equal(t, []string{"o1"}, res.NewlyFulfilled)

	o := testutil.GetOrder(t, db, "o1")
	assert.Equal(t, 3, o.FulfilledItems)
	assert.Equal(t, model.OrderStatusFulfilled, o.Status)
}

func TestAllocate_SkipsArchivedAndLeavesExcess(t *testing.T) {
	db, e, tx := setup(t)
	testutil.SeedOrder(t, db, "o1", jan1, testutil.Line{ID: "l1", Variant: "v1", Qty: 4})
	testutil.SetOrderStatus(t, db, "o1", model.OrderStatusArchived)
	testutil.SeedOrder(t, db, "o2", jan10, testutil.Line{ID: "l2", Variant: "v1", Qty: 2})

	res := allocate(t, e, tx, "v1", 5)
	assert.Equal(t, []model.Allocation{{OrderID: "o2", LineItemID: "l2", Quantity: 2}}, res.Allocations)
	assert.Equal(t, 3, res.Unallocated)
	assert.Equal(t, []string{"o2"}, res.NewlyFulfilled)

	archived := testutil.GetOrder(t, db, "o1")
	assert.Equal(t, model.OrderStatusArchived, archived.Status)
	assert.Equal(t, 0, archived.LineItems[0].FulfilledQuantity)
}

func TestAllocate_SameDateUsesInsertionOrder(t *testing.T) {
	db, e, tx := setup(t)
	testutil.SeedOrder(t, db, "o1", jan1,
		testutil.Line{ID: "l-b", Variant: "v1", Qty: 2},
		testutil.Line{ID: "l-a", Variant: "v1", Qty: 2},
	)

	res := allocate(t, e, tx, "v1", 3)
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, "l-b", res.Allocations[0].LineItemID)
	assert.Equal(t, 2, res.Allocations[0].Quantity)
	assert.Equal(t, "l-a", res.Allocations[1].LineItemID)
	assert.Equal(t, 1, res.Allocations[1].Quantity)
}

func TestAllocate_InvalidQuantity(t *testing.T) {
	_, e, _ := setup(t)
	_, err := e.Allocate(context.Background(), "v1", 0)
	assert.True(t, apperror.Is(err, apperror.KindInvalidQuantity))
}

func TestDeallocate_NewestOrderFirst(t *testing.T) {
	db, e, tx := setup(t)
	testutil.SeedOrder(t, db, "o1", jan1, testutil.Line{ID: "l1", Variant: "v1", Qty: 5, Fulfilled: 5})
	testutil.SeedOrder(t, db, "o2", jan10, testutil.Line{ID: "l2", Variant: "v1", Qty: 5, Fulfilled: 3})
	testutil.SeedOrder(t, db, "o3", jan20, testutil.Line{ID: "l3", Variant: "v1", Qty: 5})

	var res *Result
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		var err error
		res, err = e.Deallocate(ctx, "v1", 4)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []model.Allocation{
		{OrderID: "o2", LineItemID: "l2", Quantity: -3},
		{OrderID: "o1", LineItemID: "l1", Quantity: -1},
	}, res.Allocations)
	assert.Equal(t, 0, res.Unallocated)

	o1 := testutil.GetOrder(t, db, "o1")
	o2 := testutil.GetOrder(t, db, "o2")
	assert.Equal(t, 4, o1.FulfilledItems)
	assert.Equal(t, model.OrderStatusInProgress, o1.Status)
	assert.Equal(t, 0, o2.FulfilledItems)
	assert.Equal(t, model.OrderStatusPending, o2.Status)
}

func TestDeallocate_ReversesMatchingAllocate(t *testing.T) {
	db, e, tx := setup(t)
	testutil.SeedOrder(t, db, "o1", jan1, testutil.Line{ID: "l1", Variant: "v1", Qty: 5})
	testutil.SeedOrder(t, db, "o2", jan10, testutil.Line{ID: "l2", Variant: "v1", Qty: 5})

	allocate(t, e, tx, "v1", 8)
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := e.Deallocate(ctx, "v1", 8)
		return err
	})
	require.NoError(t, err)

	for _, id := range []string{"o1", "o2"} {
		o := testutil.GetOrder(t, db, id)
		assert.Equal(t, 0, o.FulfilledItems, id)
		assert.Equal(t, model.OrderStatusPending, o.Status, id)
		assert.Equal(t, 0, o.LineItems[0].FulfilledQuantity, id)
	}
}
