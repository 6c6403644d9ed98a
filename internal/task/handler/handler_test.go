package handler

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/auth"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/model"
	"github.com/fekuna/omnipos-fulfillment-service/internal/rpc"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubUseCase struct {
	task.UseCase
	operator string
}

func (s *stubUseCase) MarkProduced(_ context.Context, in *dto.MarkProducedInput) (*dto.ProductionResult, error) {
	s.operator = in.OperatorID
	if in.Quantity > 10 {
		return nil, apperror.ExceedsCapacity(in.VariantID, 0, in.Quantity, 10)
	}
	return &dto.ProductionResult{
		Task:  &model.Task{VariantID: in.VariantID, TotalQuantity: 10, MadeQuantity: in.Quantity},
		Delta: in.Quantity,
	}, nil
}

func (s *stubUseCase) ListTasks(context.Context, *dto.TaskFilters) ([]model.Task, error) {
	return []model.Task{{VariantID: "v1"}, {VariantID: "v2"}}, nil
}

func dial(t *testing.T, uc task.UseCase) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	NewTaskHandler(uc, rpc.NewErrorMapper(nil, logger.NewNop()), logger.NewNop()).Register(srv)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMarkProducedOverGRPC(t *testing.T) {
	uc := &stubUseCase{}
	conn := dial(t, uc)
	ctx := metadata.AppendToOutgoingContext(context.Background(), auth.OperatorHeader, "station-4")

	var res dto.ProductionResult
	err := conn.Invoke(ctx, "/"+ServiceName+"/MarkProduced", &MarkProducedRequest{VariantID: "v1", Quantity: "3"}, &res)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Delta)
	assert.Equal(t, 3, res.Task.MadeQuantity)
	assert.Equal(t, "station-4", uc.operator)

	err = conn.Invoke(ctx, "/"+ServiceName+"/MarkProduced", &MarkProducedRequest{VariantID: "v1", Quantity: "11"}, &res)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestListTasksOverGRPC(t *testing.T) {
	conn := dial(t, &stubUseCase{})

	var res ListTasksResponse
	require.NoError(t, conn.Invoke(context.Background(), "/"+ServiceName+"/ListTasks", &ListTasksRequest{}, &res))
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "v2", res.Tasks[1].VariantID)
}

func TestMarkProducedRejectsFractionalQuantity(t *testing.T) {
	uc := &stubUseCase{}
	conn := dial(t, uc)
	ctx := context.Background()

	var res dto.ProductionResult
	err := conn.Invoke(ctx, "/"+ServiceName+"/MarkProduced", json.RawMessage(`{"variant_id":"v1","quantity":1.5}`), &res)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "1.5")
	assert.Empty(t, uc.operator, "use case must not run")

	err = conn.Invoke(ctx, "/"+ServiceName+"/MarkProduced", json.RawMessage(`{"variant_id":"v1","quantity":"lots"}`), &res)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestParseQuantity(t *testing.T) {
	n, err := parseQuantity("4")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = parseQuantity("")
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, bad := range []json.Number{"1.5", "2e0", "99999999999999999999"} {
		_, err := parseQuantity(bad)
		assert.True(t, apperror.Is(err, apperror.KindInvalidQuantity), string(bad))
	}
}
