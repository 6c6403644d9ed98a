package handler

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/auth"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/rpc"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
	"google.golang.org/grpc"
)

const ServiceName = "fulfillment.v1.TaskService"

// MarkProducedRequest keeps quantity as a raw number so fractional values get
// an InvalidQuantity status rather than a decode failure.
type MarkProducedRequest struct {
	VariantID string      `json:"variant_id"`
	Quantity  json.Number `json:"quantity"`
}

type VariantRequest struct {
	VariantID string `json:"variant_id"`
}

type ListTasksRequest struct {
	Status string `json:"status"`
}

type ListTasksResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type TaskHandler struct {
	uc     task.UseCase
	errs   *rpc.ErrorMapper
	logger logger.ZapLogger
}

func NewTaskHandler(uc task.UseCase, errs *rpc.ErrorMapper, log logger.ZapLogger) *TaskHandler {
	return &TaskHandler{
		uc:     uc,
		errs:   errs,
		logger: log,
	}
}

func (h *TaskHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(rpc.Service(ServiceName,
		rpc.Unary(ServiceName, "MarkProduced", h.MarkProduced),
		rpc.Unary(ServiceName, "MarkComplete", h.MarkComplete),
		rpc.Unary(ServiceName, "ResetTask", h.ResetTask),
		rpc.Unary(ServiceName, "GetTask", h.GetTask),
		rpc.Unary(ServiceName, "ListTasks", h.ListTasks),
	), h)
}

func (h *TaskHandler) MarkProduced(ctx context.Context, req *MarkProducedRequest) (*dto.ProductionResult, error) {
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}

	res, err := h.uc.MarkProduced(ctx, &dto.MarkProducedInput{
		VariantID:  req.VariantID,
		Quantity:   qty,
		OperatorID: auth.GetOperatorID(ctx),
	})
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return res, nil
}

func (h *TaskHandler) MarkComplete(ctx context.Context, req *VariantRequest) (*dto.ProductionResult, error) {
	res, err := h.uc.MarkComplete(ctx, &dto.VariantInput{
		VariantID:  req.VariantID,
		OperatorID: auth.GetOperatorID(ctx),
	})
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return res, nil
}

func (h *TaskHandler) ResetTask(ctx context.Context, req *VariantRequest) (*dto.ProductionResult, error) {
	res, err := h.uc.ResetTask(ctx, &dto.VariantInput{
		VariantID:  req.VariantID,
		OperatorID: auth.GetOperatorID(ctx),
	})
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return res, nil
}

func (h *TaskHandler) GetTask(ctx context.Context, req *VariantRequest) (*model.Task, error) {
	t, err := h.uc.GetTask(ctx, req.VariantID)
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return t, nil
}

func (h *TaskHandler) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	tasks, err := h.uc.ListTasks(ctx, &dto.TaskFilters{Status: req.Status})
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return &ListTasksResponse{Tasks: tasks}, nil
}

// parseQuantity accepts whole numbers only. A missing quantity reads as 0 and
// is rejected by validation.
func parseQuantity(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	v, err := n.Int64()
	if err != nil || int64(int(v)) != v {
		return 0, apperror.InvalidQuantity(n.String())
	}
	return int(v), nil
}
