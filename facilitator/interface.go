// Package facilitator defines the contract between the payment gate and a facilitator.
//
// A facilitator verifies payment authorizations and settles them on chain. The
// gate never inspects the X-PAYMENT header itself; it forwards the header string
// verbatim together with the requirement it was checked against.
package facilitator

import (
	"context"

	"github.com/nacorid/x402-gate"
)

// Interface defines the facilitator operations used by the gate.
type Interface interface {
	// Verify checks a payment authorization without executing it.
	Verify(ctx context.Context, paymentHeader string, requirement x402.PaymentRequirement) (*x402.VerifyResult, error)

	// Settle executes a verified payment. It is only called after a successful Verify
	// and a successful downstream response.
	Settle(ctx context.Context, paymentHeader string, requirement x402.PaymentRequirement) (*x402.SettleResult, error)
}

// Request is the body sent to both POST /verify and POST /settle.
type Request struct {
	// Payload is the raw X-PAYMENT header value.
	Payload string `json:"payload"`

	// Details is the requirement the payment must satisfy.
	Details x402.PaymentRequirement `json:"details"`
}
