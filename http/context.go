package http

import (
	"context"

	"github.com/nacorid/x402-gate"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PaymentContextKey is the context key for storing verified payment information.
const PaymentContextKey = contextKey("x402_payment")

// PaymentInfo describes the verified payment of the current request.
type PaymentInfo struct {
	// RequestID correlates the request with gate log lines and events.
	RequestID string

	// Requirement is the requirement the payment was verified against.
	Requirement x402.PaymentRequirement

	// Verification is the facilitator's verify result.
	Verification x402.VerifyResult
}

// GetPaymentFromContext extracts the verified payment information from the request context.
// Returns nil if no payment was verified or the context does not contain payment info.
func GetPaymentFromContext(ctx context.Context) *PaymentInfo {
	info, ok := ctx.Value(PaymentContextKey).(*PaymentInfo)
	if !ok {
		return nil
	}
	return info
}

// WithPaymentInfo returns a copy of ctx carrying info.
func WithPaymentInfo(ctx context.Context, info *PaymentInfo) context.Context {
	return context.WithValue(ctx, PaymentContextKey, info)
}
