package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/lock"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order/dto"
	orderRepoPkg "github.com/fekuna/omnipos-fulfillment-service/internal/order/repository"
	taskRepoPkg "github.com/fekuna/omnipos-fulfillment-service/internal/task/repository"
	taskUseCasePkg "github.com/fekuna/omnipos-fulfillment-service/internal/task/usecase"
	"github.com/fekuna/omnipos-fulfillment-service/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUseCase(t *testing.T) (*sqlx.DB, order.UseCase) {
	t.Helper()
	db := testutil.NewDB(t)
	tasks := taskUseCasePkg.NewTaskStore(taskRepoPkg.NewSQLRepository(db))
	uc := NewOrderUseCase(orderRepoPkg.NewSQLRepository(db), tasks, database.NewTransactor(db), lock.NewLocalLocker(), logger.NewNop())
	return db, uc
}

func date(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

func TestArchiveRoundTrip(t *testing.T) {
	db, uc := newUseCase(t)
	ctx := context.Background()
	testutil.SeedOrder(t, db, "o1", date(1),
		testutil.Line{ID: "l1", Variant: "v1", Qty: 5, Fulfilled: 2},
		testutil.Line{ID: "l2", Variant: "v2", Qty: 1},
	)
	testutil.SeedOrder(t, db, "o2", date(2), testutil.Line{ID: "l3", Variant: "v1", Qty: 5})
	testutil.SeedTask(t, db, "v1", 10, 2)
	testutil.SeedTask(t, db, "v2", 1, 0)
	testutil.AssertConsistent(t, db)

	for i := 0; i < 3; i++ {
		res, err := uc.ArchiveOrder(ctx, &dto.OrderInput{OrderID: "o1"})
		require.NoError(t, err)
		assert.False(t, res.AlreadyArchived)
		assert.Equal(t, model.OrderStatusArchived, res.Order.Status)

		v1 := testutil.GetTask(t, db, "v1")
		require.NotNil(t, v1)
		assert.Equal(t, 5, v1.TotalQuantity)
		assert.Equal(t, 0, v1.MadeQuantity)
		assert.Nil(t, testutil.GetTask(t, db, "v2"))
		testutil.AssertConsistent(t, db)

		res, err = uc.UnarchiveOrder(ctx, &dto.OrderInput{OrderID: "o1"})
		require.NoError(t, err)
		assert.False(t, res.NotArchived)
		assert.Equal(t, model.OrderStatusInProgress, res.Order.Status)

		v1 = testutil.GetTask(t, db, "v1")
		assert.Equal(t, 10, v1.TotalQuantity)
		assert.Equal(t, 2, v1.MadeQuantity)
		v2 := testutil.GetTask(t, db, "v2")
		require.NotNil(t, v2)
		assert.Equal(t, 1, v2.TotalQuantity)
		testutil.AssertConsistent(t, db)
	}

	got := testutil.GetOrder(t, db, "o1")
	assert.Equal(t, 2, got.FulfilledItems)
	assert.Equal(t, 2, got.LineItems[0].FulfilledQuantity)
}

func TestArchiveDeletesEmptiedTask(t *testing.T) {
	db, uc := newUseCase(t)
	ctx := context.Background()
	testutil.SeedOrder(t, db, "o1", date(1), testutil.Line{ID: "l1", Variant: "v1", Qty: 3, Fulfilled: 3})
	testutil.SeedTask(t, db, "v1", 3, 3)

	_, err := uc.ArchiveOrder(ctx, &dto.OrderInput{OrderID: "o1"})
	require.NoError(t, err)
	assert.Nil(t, testutil.GetTask(t, db, "v1"))

	_, err = uc.UnarchiveOrder(ctx, &dto.OrderInput{OrderID: "o1"})
	require.NoError(t, err)
	task := testutil.GetTask(t, db, "v1")
	require.NotNil(t, task)
	assert.Equal(t, 3, task.TotalQuantity)
	assert.Equal(t, 3, task.MadeQuantity)
	assert.Equal(t, model.TaskStatusCompleted, task.Status)
	assert.Equal(t, model.OrderStatusFulfilled, testutil.GetOrder(t, db, "o1").Status)
	testutil.AssertConsistent(t, db)
}

func TestArchiveIdempotence(t *testing.T) {
	db, uc := newUseCase(t)
	ctx := context.Background()
	testutil.SeedOrder(t, db, "o1", date(1), testutil.Line{ID: "l1", Variant: "v1", Qty: 2})
	testutil.SeedTask(t, db, "v1", 2, 0)

	res, err := uc.UnarchiveOrder(ctx, &dto.OrderInput{OrderID: "o1"})
	require.NoError(t, err)
	assert.True(t, res.NotArchived)

	_, err = uc.ArchiveOrder(ctx, &dto.OrderInput{OrderID: "o1"})
	require.NoError(t, err)
	res, err = uc.ArchiveOrder(ctx, &dto.OrderInput{OrderID: "o1"})
	require.NoError(t, err)
	assert.True(t, res.AlreadyArchived)
	assert.Nil(t, testutil.GetTask(t, db, "v1"))
	testutil.AssertConsistent(t, db)
}

func TestArchiveErrors(t *testing.T) {
	_, uc := newUseCase(t)
	ctx := context.Background()

	_, err := uc.ArchiveOrder(ctx, &dto.OrderInput{OrderID: "nope"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = uc.UnarchiveOrder(ctx, &dto.OrderInput{OrderID: "nope"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = uc.ArchiveOrder(ctx, &dto.OrderInput{})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	_, err = uc.GetOrder(ctx, "nope")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestBulkArchiveAndPurge(t *testing.T) {
	db, uc := newUseCase(t)
	ctx := context.Background()
	testutil.SeedOrder(t, db, "done1", date(1), testutil.Line{ID: "l1", Variant: "v1", Qty: 2, Fulfilled: 2})
	testutil.SeedOrder(t, db, "done2", date(2), testutil.Line{ID: "l2", Variant: "v1", Qty: 1, Fulfilled: 1})
	testutil.SeedOrder(t, db, "open", date(3), testutil.Line{ID: "l3", Variant: "v1", Qty: 4})
	testutil.SeedTask(t, db, "v1", 7, 3)

	n, err := uc.ArchiveAllFulfilled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v1 := testutil.GetTask(t, db, "v1")
	assert.Equal(t, 4, v1.TotalQuantity)
	assert.Equal(t, 0, v1.MadeQuantity)
	testutil.AssertConsistent(t, db)

	active, total, err := uc.ListOrders(ctx, &dto.OrderFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "open", active[0].OrderID)

	n, err = uc.UnarchiveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	v1 = testutil.GetTask(t, db, "v1")
	assert.Equal(t, 7, v1.TotalQuantity)
	assert.Equal(t, 3, v1.MadeQuantity)
	testutil.AssertConsistent(t, db)

	_, err = uc.ArchiveAllFulfilled(ctx)
	require.NoError(t, err)
	deleted, err := uc.DeleteArchived(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Nil(t, testutil.GetOrder(t, db, "done1"))
	testutil.AssertConsistent(t, db)
}

func TestGetOrderIncludesLines(t *testing.T) {
	db, uc := newUseCase(t)
	testutil.SeedOrder(t, db, "o1", date(1),
		testutil.Line{ID: "a", Variant: "v1", Qty: 1},
		testutil.Line{ID: "b", Variant: "v2", Qty: 2},
	)

	got, err := uc.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "a", got.LineItems[0].LineItemID)
	assert.Equal(t, 3, got.TotalItems)
}
