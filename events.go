package x402

import "time"

// PaymentEventType represents the type of payment event.
type PaymentEventType string

const (
	// PaymentEventAttempt is emitted when a request with a payment header enters verification.
	PaymentEventAttempt PaymentEventType = "attempt"

	// PaymentEventSuccess is emitted after a successful settlement.
	PaymentEventSuccess PaymentEventType = "success"

	// PaymentEventFailure is emitted when a gated request is answered with 402.
	// Error is a *PaymentError whose Code names the reason.
	PaymentEventFailure PaymentEventType = "failure"
)

// PaymentStage names the step of the gate a PaymentEvent refers to.
type PaymentStage string

const (
	StageVerify PaymentStage = "verify"
	StageSettle PaymentStage = "settle"
)

// PaymentEvent represents a payment lifecycle event.
type PaymentEvent struct {
	// Type is the event type (attempt, success, failure).
	Type PaymentEventType

	// Stage is the gate step that produced the event.
	Stage PaymentStage

	// Timestamp is when the event occurred.
	Timestamp time.Time

	// RequestID correlates the event with the gate's log lines.
	RequestID string

	// URL is the resource being accessed.
	URL string

	// Amount is the payment amount in base units.
	Amount string

	// Asset is the token contract address.
	Asset string

	// Network is the chain id.
	Network string

	// Scheme is the payment scheme (e.g., "exact").
	Scheme string

	// Recipient is the payment recipient address.
	Recipient string

	// Transaction is the settlement transaction hash (available on success).
	Transaction string

	// Error contains error details (available on failure).
	Error error

	// Duration is the time taken by the facilitator call.
	Duration time.Duration
}

// PaymentCallback handles payment events.
// Callbacks run synchronously on the request goroutine and should return quickly.
type PaymentCallback func(PaymentEvent)

// NewPaymentEvent returns an event of the given type describing requirement.
func NewPaymentEvent(eventType PaymentEventType, stage PaymentStage, requirement PaymentRequirement) PaymentEvent {
	return PaymentEvent{
		Type:      eventType,
		Stage:     stage,
		Timestamp: time.Now(),
		URL:       requirement.Resource,
		Amount:    requirement.MaxAmountRequired,
		Asset:     requirement.USDCAddress,
		Network:   requirement.NetworkID,
		Scheme:    requirement.Scheme,
		Recipient: requirement.PayToAddress,
	}
}
