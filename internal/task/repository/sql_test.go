package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
	"github.com/fekuna/omnipos-fulfillment-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertKeepsProgress(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSQLRepository(db)
	ctx := context.Background()
	testutil.SeedTask(t, db, "v1", 5, 3)

	now := time.Now().UTC()
	err := repo.Upsert(ctx, &model.Task{
		VariantID:     "v1",
		ProductTitle:  "Mug",
		VariantTitle:  "Blue",
		TotalQuantity: 8,
		Status:        model.TaskStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)

	got, err := repo.FindByVariant(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mug", got.ProductTitle)
	assert.Equal(t, 8, got.TotalQuantity)
	assert.Equal(t, 3, got.MadeQuantity)
	assert.Equal(t, model.TaskStatusInProgress, got.Status)
}

func TestFindByVariantMissing(t *testing.T) {
	repo := NewSQLRepository(testutil.NewDB(t))
	got, err := repo.FindByVariant(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindAllFiltersByStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSQLRepository(db)
	testutil.SeedTask(t, db, "a", 2, 0)
	testutil.SeedTask(t, db, "b", 2, 2)
	testutil.SeedTask(t, db, "c", 2, 1)

	all, err := repo.FindAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	done, err := repo.FindAll(context.Background(), &dto.TaskFilters{Status: string(model.TaskStatusCompleted)})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "b", done[0].VariantID)
}

func TestDeleteZeroTotal(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSQLRepository(db)
	testutil.SeedTask(t, db, "keep", 1, 0)
	testutil.SeedTask(t, db, "drop", 0, 0)

	n, err := repo.DeleteZeroTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Nil(t, testutil.GetTask(t, db, "drop"))
	assert.NotNil(t, testutil.GetTask(t, db, "keep"))
}
