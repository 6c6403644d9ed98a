package reconcile

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
)

type UseCase interface {
	// Sync fetches a fresh snapshot and merges it into the stores. The
	// returned run is recorded in history and is non-nil even on failure.
	Sync(ctx context.Context) (*model.SyncRun, error)
	ListSyncRuns(ctx context.Context, limit int) ([]model.SyncRun, error)
}
