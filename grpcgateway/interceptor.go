package grpcgateway

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RequirePaymentInterceptor rejects unary calls that did not come through the
// gate with a verified payment. methods limits enforcement to the listed full
// method names; an empty list enforces every method.
//
// Metadata can be forged by clients that reach the gRPC server directly, so the
// server must only be reachable through the gateway.
func RequirePaymentInterceptor(methods ...string) grpc.UnaryServerInterceptor {
	enforced := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		enforced[m] = struct{}{}
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if len(enforced) > 0 {
			if _, ok := enforced[info.FullMethod]; !ok {
				return handler(ctx, req)
			}
		}
		if _, ok := GetPaymentFromGRPCContext(ctx); !ok {
			return nil, status.Error(codes.FailedPrecondition, "payment required")
		}
		return handler(ctx, req)
	}
}
