package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Unary builds a method descriptor that decodes *Req and calls fn, running
// any server interceptors first. Undecodable requests fail with InvalidArgument.
func Unary[Req, Resp any](service, method string, fn func(ctx context.Context, req *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "malformed %s request: %v", method, err)
			}
			if interceptor == nil {
				return fn(ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, r any) (any, error) {
				return fn(ctx, r.(*Req))
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

// Service assembles a descriptor that accepts any implementation value; the
// method closures already carry their receiver.
func Service(name string, methods ...grpc.MethodDesc) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: name,
		HandlerType: (*any)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    name,
	}
}

// Empty is the request and response of methods without fields.
type Empty struct{}
