package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

const OperatorHeader = "x-operator-id"

type operatorKey struct{}

// WithOperatorID attaches the operator to ctx for callers outside gRPC such as
// the CLI and the event listener.
func WithOperatorID(ctx context.Context, operatorID string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operatorID)
}

// GetOperatorID returns the operator set on ctx, falling back to the
// x-operator-id metadata of an incoming call.
func GetOperatorID(ctx context.Context) string {
	if val, ok := ctx.Value(operatorKey{}).(string); ok {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(OperatorHeader); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
