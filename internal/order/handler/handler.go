package handler

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/auth"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order/dto"
	"github.com/fekuna/omnipos-fulfillment-service/internal/rpc"
	"google.golang.org/grpc"
)

const ServiceName = "fulfillment.v1.OrderService"

type OrderRequest struct {
	OrderID string `json:"order_id"`
}

type ListOrdersRequest struct {
	Status          string `json:"status"`
	IncludeArchived bool   `json:"include_archived"`
	Page            int    `json:"page"`
	PageSize        int    `json:"page_size"`
}

type ListOrdersResponse struct {
	Orders []model.Order `json:"orders"`
	Total  int           `json:"total"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type OrderHandler struct {
	uc     order.UseCase
	errs   *rpc.ErrorMapper
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, errs *rpc.ErrorMapper, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		errs:   errs,
		logger: log,
	}
}

func (h *OrderHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(rpc.Service(ServiceName,
		rpc.Unary(ServiceName, "ArchiveOrder", h.ArchiveOrder),
		rpc.Unary(ServiceName, "UnarchiveOrder", h.UnarchiveOrder),
		rpc.Unary(ServiceName, "ArchiveAllFulfilled", h.ArchiveAllFulfilled),
		rpc.Unary(ServiceName, "UnarchiveAll", h.UnarchiveAll),
		rpc.Unary(ServiceName, "DeleteArchived", h.DeleteArchived),
		rpc.Unary(ServiceName, "GetOrder", h.GetOrder),
		rpc.Unary(ServiceName, "ListOrders", h.ListOrders),
	), h)
}

func (h *OrderHandler) ArchiveOrder(ctx context.Context, req *OrderRequest) (*dto.ArchiveResult, error) {
	res, err := h.uc.ArchiveOrder(ctx, &dto.OrderInput{OrderID: req.OrderID, OperatorID: auth.GetOperatorID(ctx)})
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return res, nil
}

func (h *OrderHandler) UnarchiveOrder(ctx context.Context, req *OrderRequest) (*dto.ArchiveResult, error) {
	res, err := h.uc.UnarchiveOrder(ctx, &dto.OrderInput{OrderID: req.OrderID, OperatorID: auth.GetOperatorID(ctx)})
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return res, nil
}

func (h *OrderHandler) ArchiveAllFulfilled(ctx context.Context, _ *rpc.Empty) (*CountResponse, error) {
	n, err := h.uc.ArchiveAllFulfilled(ctx)
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return &CountResponse{Count: int64(n)}, nil
}

func (h *OrderHandler) UnarchiveAll(ctx context.Context, _ *rpc.Empty) (*CountResponse, error) {
	n, err := h.uc.UnarchiveAll(ctx)
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return &CountResponse{Count: int64(n)}, nil
}

func (h *OrderHandler) DeleteArchived(ctx context.Context, _ *rpc.Empty) (*CountResponse, error) {
	n, err := h.uc.DeleteArchived(ctx)
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return &CountResponse{Count: n}, nil
}

func (h *OrderHandler) GetOrder(ctx context.Context, req *OrderRequest) (*model.Order, error) {
	o, err := h.uc.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return o, nil
}

func (h *OrderHandler) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	orders, total, err := h.uc.ListOrders(ctx, &dto.OrderFilters{
		Status:          req.Status,
		IncludeArchived: req.IncludeArchived,
		Page:            req.Page,
		PageSize:        req.PageSize,
	})
	if err != nil {
		return nil, h.errs.Status(ctx, err)
	}
	return &ListOrdersResponse{Orders: orders, Total: total}, nil
}
