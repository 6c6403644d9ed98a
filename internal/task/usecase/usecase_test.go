package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/allocation"
	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/event"
	"github.com/fekuna/omnipos-fulfillment-service/internal/lock"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	orderRepoPkg "github.com/fekuna/omnipos-fulfillment-service/internal/order/repository"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
	taskRepoPkg "github.com/fekuna/omnipos-fulfillment-service/internal/task/repository"
	"github.com/fekuna/omnipos-fulfillment-service/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Envelope
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, evt event.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func newUseCase(t *testing.T, pub event.Publisher) (*sqlx.DB, task.UseCase) {
	t.Helper()
	db := testutil.NewDB(t)
	repo := taskRepoPkg.NewSQLRepository(db)
	engine := allocation.NewEngine(orderRepoPkg.NewSQLRepository(db), logger.NewNop())
	uc := NewTaskUseCase(NewTaskStore(repo), repo, engine, database.NewTransactor(db), lock.NewLocalLocker(), pub, logger.NewNop())
	return db, uc
}

func seedTwoOrders(t *testing.T, db *sqlx.DB) {
	t.Helper()
	testutil.SeedOrder(t, db, "o1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), testutil.Line{ID: "l1", Variant: "v1", Qty: 5})
	testutil.SeedOrder(t, db, "o2", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), testutil.Line{ID: "l2", Variant: "v1", Qty: 5})
	testutil.SeedTask(t, db, "v1", 10, 0)
}

func TestMarkProduced_AllocatesAndPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	db, uc := newUseCase(t, pub)
	seedTwoOrders(t, db)

	res, err := uc.MarkProduced(context.Background(), &dto.MarkProducedInput{VariantID: "v1", Quantity: 3, OperatorID: "op-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Task.MadeQuantity)
	assert.Empty(t, res.NewlyFulfilled)
	assert.Empty(t, pub.events)
	testutil.AssertConsistent(t, db)

	res, err = uc.MarkProduced(context.Background(), &dto.MarkProducedInput{VariantID: "v1", Quantity: 5, OperatorID: "op-1"})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Task.MadeQuantity)
	assert.Equal(t, []string{"o1"}, res.NewlyFulfilled)
	testutil.AssertConsistent(t, db)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.TypeOrdersFulfilled, pub.events[0].EventType)
	payload, ok := pub.events[0].Payload.(event.OrdersFulfilledPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"o1"}, payload.OrderIDs)
	assert.Equal(t, "op-1", payload.OperatorID)
}

func TestMarkProduced_ExceedsLeavesStateUnchanged(t *testing.T) {
	db, uc := newUseCase(t, event.NopPublisher{})
	seedTwoOrders(t, db)

	_, err := uc.MarkProduced(context.Background(), &dto.MarkProducedInput{VariantID: "v1", Quantity: 11})
	assert.True(t, apperror.Is(err, apperror.KindExceedsCapacity))

	assert.Equal(t, 0, testutil.GetTask(t, db, "v1").MadeQuantity)
	assert.Equal(t, 0, testutil.GetOrder(t, db, "o1").FulfilledItems)
	testutil.AssertConsistent(t, db)
}

func TestMarkProduced_Validation(t *testing.T) {
	_, uc := newUseCase(t, event.NopPublisher{})

	_, err := uc.MarkProduced(context.Background(), &dto.MarkProducedInput{VariantID: "v1", Quantity: 0})
	assert.True(t, apperror.Is(err, apperror.KindInvalidQuantity))

	_, err = uc.MarkProduced(context.Background(), &dto.MarkProducedInput{Quantity: 1})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	_, err = uc.MarkProduced(context.Background(), &dto.MarkProducedInput{VariantID: "missing", Quantity: 1})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestMarkProduced_PublishFailureKeepsCommit(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	db, uc := newUseCase(t, pub)
	seedTwoOrders(t, db)

	res, err := uc.MarkProduced(context.Background(), &dto.MarkProducedInput{VariantID: "v1", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, res.NewlyFulfilled)
	assert.Equal(t, model.OrderStatusFulfilled, testutil.GetOrder(t, db, "o1").Status)
}

func TestMarkComplete_AllocatesRemainder(t *testing.T) {
	pub := &recordingPublisher{}
	db, uc := newUseCase(t, pub)
	seedTwoOrders(t, db)

	_, err := uc.MarkProduced(context.Background(), &dto.MarkProducedInput{VariantID: "v1", Quantity: 2})
	require.NoError(t, err)

	res, err := uc.MarkComplete(context.Background(), &dto.VariantInput{VariantID: "v1"})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Delta)
	assert.ElementsMatch(t, []string{"o1", "o2"}, res.NewlyFulfilled)
	assert.Equal(t, model.TaskStatusCompleted, res.Task.Status)
	testutil.AssertConsistent(t, db)

	again, err := uc.MarkComplete(context.Background(), &dto.VariantInput{VariantID: "v1"})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Delta)
	assert.Empty(t, again.NewlyFulfilled)
	assert.Len(t, pub.events, 1)
	testutil.AssertConsistent(t, db)
}

func TestResetTask_DeallocatesNewestFirst(t *testing.T) {
	db, uc := newUseCase(t, event.NopPublisher{})
	seedTwoOrders(t, db)

	_, err := uc.MarkProduced(context.Background(), &dto.MarkProducedInput{VariantID: "v1", Quantity: 8})
	require.NoError(t, err)

	res, err := uc.ResetTask(context.Background(), &dto.VariantInput{VariantID: "v1"})
	require.NoError(t, err)
	assert.Equal(t, -8, res.Delta)
	assert.Equal(t, 0, res.Task.MadeQuantity)
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, "o2", res.Allocations[0].OrderID)
	assert.Equal(t, -3, res.Allocations[0].Quantity)
	assert.Equal(t, "o1", res.Allocations[1].OrderID)
	assert.Equal(t, -5, res.Allocations[1].Quantity)

	assert.Equal(t, model.OrderStatusPending, testutil.GetOrder(t, db, "o1").Status)
	assert.Equal(t, model.OrderStatusPending, testutil.GetOrder(t, db, "o2").Status)
	testutil.AssertConsistent(t, db)
}

func TestGetAndListTasks(t *testing.T) {
	db, uc := newUseCase(t, event.NopPublisher{})
	testutil.SeedTask(t, db, "v1", 2, 0)

	got, err := uc.GetTask(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.VariantID)

	_, err = uc.GetTask(context.Background(), "nope")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	list, err := uc.ListTasks(context.Background(), &dto.TaskFilters{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
