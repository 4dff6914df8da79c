package x402

import "errors"

// Sentinel errors for x402 payment gating.
var (
	// ErrInvalidAmount indicates a price that cannot be converted to base units.
	ErrInvalidAmount = errors.New("x402: invalid amount")

	// ErrUnsupportedNetwork indicates a network id with no known USDC deployment.
	ErrUnsupportedNetwork = errors.New("x402: unsupported network")

	// ErrInvalidConfig indicates a gate configuration that failed validation.
	ErrInvalidConfig = errors.New("x402: invalid configuration")

	// ErrPaymentRequired indicates the request carried no X-PAYMENT header.
	ErrPaymentRequired = errors.New("x402: payment required")

	// ErrInvalidPayment indicates the facilitator rejected the payment.
	ErrInvalidPayment = errors.New("x402: invalid payment")

	// ErrFacilitatorUnavailable indicates the facilitator could not be reached
	// or answered with an unusable response.
	ErrFacilitatorUnavailable = errors.New("x402: facilitator service unavailable")

	// ErrSettlementFailed indicates payment settlement failed.
	ErrSettlementFailed = errors.New("x402: payment settlement failed")

	// ErrMalformedHeader indicates a payment header that cannot be decoded.
	ErrMalformedHeader = errors.New("x402: malformed payment header")

	// ErrUnsupportedScheme indicates an unsupported payment scheme.
	ErrUnsupportedScheme = errors.New("x402: unsupported payment scheme")
)

// ErrorCode represents payment error codes for programmatic handling.
type ErrorCode string

const (
	ErrCodePaymentRequired        ErrorCode = "PAYMENT_REQUIRED"
	ErrCodeInvalidPayment         ErrorCode = "INVALID_PAYMENT"
	ErrCodeVerificationFailed     ErrorCode = "VERIFICATION_FAILED"
	ErrCodeSettlementFailed       ErrorCode = "SETTLEMENT_FAILED"
	ErrCodeRequirementUnavailable ErrorCode = "REQUIREMENT_UNAVAILABLE"
)

// PaymentError provides structured error information about a rejected request.
type PaymentError struct {
	// Code is the error code for programmatic handling.
	Code ErrorCode

	// Message is the human-readable error message.
	Message string

	// Details contains additional error context.
	Details map[string]interface{}

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError with the given code and message.
func NewPaymentError(code ErrorCode, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// WithDetails adds additional context to the error.
func (e *PaymentError) WithDetails(key string, value interface{}) *PaymentError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}
