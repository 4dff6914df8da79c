// Package grpcgateway carries payments verified by the HTTP gate into gRPC handlers
// served through grpc-gateway.
//
// Wrap the gateway mux with the gate middleware and build the mux with
// WithPaymentMetadata; gRPC handlers then read the payment with
// GetPaymentFromGRPCContext.
package grpcgateway

import (
	"context"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/metadata"

	x402http "github.com/nacorid/x402-gate/http"
)

// Metadata keys set on outgoing gRPC calls for verified requests.
const (
	MetadataKeyVerified  = "x-payment-verified"
	MetadataKeyAmount    = "x-payment-amount"
	MetadataKeyNetwork   = "x-payment-network"
	MetadataKeyPayTo     = "x-payment-pay-to"
	MetadataKeyScheme    = "x-payment-scheme"
	MetadataKeyResource  = "x-payment-resource"
	MetadataKeyRequestID = "x-payment-request-id"
)

// PaymentContext is the payment information visible to a gRPC handler.
type PaymentContext struct {
	Verified  bool
	Amount    string
	Network   string
	PayTo     string
	Scheme    string
	Resource  string
	RequestID string
}

// WithPaymentMetadata returns a ServeMuxOption that propagates payment information
// from the HTTP request context to gRPC metadata.
func WithPaymentMetadata() runtime.ServeMuxOption {
	return runtime.WithMetadata(PaymentMetadata)
}

// PaymentMetadata builds the gRPC metadata for r. It is empty unless the gate
// verified a payment for the request.
func PaymentMetadata(_ context.Context, r *http.Request) metadata.MD {
	md := metadata.MD{}

	info := x402http.GetPaymentFromContext(r.Context())
	if info == nil || !info.Verification.IsValid {
		return md
	}

	req := info.Requirement
	md.Set(MetadataKeyVerified, "true")
	md.Set(MetadataKeyAmount, req.MaxAmountRequired)
	md.Set(MetadataKeyNetwork, req.NetworkID)
	md.Set(MetadataKeyPayTo, req.PayToAddress)
	md.Set(MetadataKeyScheme, req.Scheme)
	md.Set(MetadataKeyResource, req.Resource)
	if info.RequestID != "" {
		md.Set(MetadataKeyRequestID, info.RequestID)
	}
	return md
}

// GetPaymentFromGRPCContext extracts payment information from incoming gRPC metadata.
func GetPaymentFromGRPCContext(ctx context.Context) (*PaymentContext, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, false
	}

	verified := md.Get(MetadataKeyVerified)
	if len(verified) == 0 || verified[0] != "true" {
		return nil, false
	}

	return &PaymentContext{
		Verified:  true,
		Amount:    first(md, MetadataKeyAmount),
		Network:   first(md, MetadataKeyNetwork),
		PayTo:     first(md, MetadataKeyPayTo),
		Scheme:    first(md, MetadataKeyScheme),
		Resource:  first(md, MetadataKeyResource),
		RequestID: first(md, MetadataKeyRequestID),
	}, true
}

func first(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
