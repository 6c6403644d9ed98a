package handler

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/reconcile"
	"github.com/fekuna/omnipos-fulfillment-service/internal/rpc"
	"google.golang.org/grpc"
)

const ServiceName = "fulfillment.v1.SyncService"

type ListSyncRunsRequest struct {
	Limit int `json:"limit"`
}

type ListSyncRunsResponse struct {
	Runs []model.SyncRun `json:"runs"`
}

type SyncHandler struct {
	uc     reconcile.UseCase
	errs   *rpc.ErrorMapper
	logger logger.ZapLogger
}

func NewSyncHandler(uc reconcile.UseCase, errs *rpc.ErrorMapper, log logger.ZapLogger) *SyncHandler {
	return &SyncHandler{
		uc:     uc,
		errs:   errs,
		logger: log,
	}
}

func (h *SyncHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(rpc.Service(ServiceName,
		rpc.Unary(ServiceName, "Sync", h.Sync),
		rpc.Unary(ServiceName, "ListSyncRuns", h.ListSyncRuns),
	), h)
}

func (h *SyncHandler) Sync(ctx context.Context, _ *rpc.Empty) (*model.SyncRun, error) {
	run, err := h.uc.Sync(ctx)
	if err != nil {
		return nil, h.errs.SyncFailed(ctx, err)
	}
	return run, nil
}

func (h *SyncHandler) ListSyncRuns(ctx context.Context, req *ListSyncRunsRequest) (*ListSyncRunsResponse, error) {
	runs, err := h.uc.ListSyncRuns(ctx, req.Limit)
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return &ListSyncRunsResponse{Runs: runs}, nil
}
