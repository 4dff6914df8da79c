// Package metrics records gate outcomes and facilitator latency.
package metrics

import "time"

// Outcome names passed to Recorder.IncCounter by the gate.
const (
	OutcomeBypassed        = "bypassed"
	OutcomePaymentRequired = "payment_required"
	OutcomeInvalidPayment  = "invalid_payment"
	OutcomeVerifyError     = "verify_error"
	OutcomeHandlerFailed   = "handler_failed"
	OutcomeSettleFailed    = "settle_failed"
	OutcomeSettled         = "settled"
	OutcomeConfigError     = "config_error"
)

// Operation names passed to Recorder.ObserveLatency.
const (
	OperationVerify = "verify"
	OperationSettle = "settle"
)

// Recorder receives gate measurements. Labels carry "network".
type Recorder interface {
	// IncCounter counts one gated request with the given outcome.
	IncCounter(name string, labels map[string]string)

	// ObserveLatency records the duration of a facilitator operation.
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
