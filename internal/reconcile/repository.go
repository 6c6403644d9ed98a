package reconcile

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
)

// Repository stores the sync history log.
type Repository interface {
	Create(ctx context.Context, run *model.SyncRun) error
	FindRecent(ctx context.Context, limit int) ([]model.SyncRun, error)
}
