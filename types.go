// Package x402 implements the resource-server side of the x402 payment protocol.
//
// A protected resource answers unpaid requests with HTTP 402 and a PaymentRequirement.
// Callers retry with a signed authorization in the X-PAYMENT header, which a remote
// facilitator verifies before the request is served and settles after the response
// has been produced successfully.
//
// Import path: github.com/nacorid/x402-gate
package x402

// X402Version is the protocol version spoken by this package.
const X402Version = 1

// SchemeExact is the identifier of the "exact" payment scheme.
const SchemeExact = "exact"

// Header names used by the protocol.
const (
	// HeaderPayment carries the caller's serialized PaymentPayload.
	HeaderPayment = "X-PAYMENT"

	// HeaderPaymentResponse carries the base64-encoded SettleResult on success.
	HeaderPaymentResponse = "X-PAYMENT-RESPONSE"
)

// PaymentRequirement describes the payment a resource server needs before serving a resource.
// Values are built per request by BuildRequirement and must be treated as read-only.
type PaymentRequirement struct {
	// Scheme is the payment scheme identifier (currently always "exact").
	Scheme string `json:"scheme"`

	// NetworkID is the chain identifier, e.g. "84532" for Base Sepolia.
	NetworkID string `json:"networkId"`

	// MaxAmountRequired is the amount in token base units, as a decimal integer string.
	MaxAmountRequired string `json:"maxAmountRequired"`

	// Resource is the URI of the protected resource.
	Resource string `json:"resource"`

	// Description is a human-readable description of the resource.
	Description string `json:"description"`

	// MimeType is the MIME type of the resource response.
	MimeType string `json:"mimeType"`

	// PayToAddress is the address that receives the payment.
	PayToAddress string `json:"payToAddress"`

	// RequiredDeadlineSeconds is the maximum time the facilitator allows for the payment.
	RequiredDeadlineSeconds int `json:"requiredDeadlineSeconds"`

	// USDCAddress is the token contract address on NetworkID.
	USDCAddress string `json:"usdcAddress"`

	// OutputSchema optionally describes the resource response. Opaque to this package.
	OutputSchema interface{} `json:"outputSchema"`

	// Extra holds scheme-specific metadata. Opaque to this package.
	Extra map[string]interface{} `json:"extra"`
}

// PaymentRequiredResponse is the JSON body of every 402 response produced by the gate.
type PaymentRequiredResponse struct {
	// Error is a human-readable reason for the 402.
	Error string `json:"error"`

	// PaymentDetails is the requirement the caller must satisfy.
	PaymentDetails *PaymentRequirement `json:"paymentDetails,omitempty"`
}

// PaymentPayload is the caller-supplied proof of payment carried in the X-PAYMENT header.
// The gate only transports the raw header; this type exists for clients and tooling.
type PaymentPayload struct {
	// X402Version is the protocol version.
	X402Version int `json:"x402Version"`

	// Scheme selects the concrete type of Payload.
	Scheme string `json:"scheme"`

	// NetworkID is the chain the authorization is signed for.
	NetworkID string `json:"networkId"`

	// Payload is the scheme-specific signed data.
	Payload SchemePayload `json:"payload"`

	// Resource is the resource the payment is for.
	Resource string `json:"resource"`
}

// VerifyResult is returned by the facilitator /verify endpoint.
type VerifyResult struct {
	// IsValid reports whether the payment authorization is acceptable.
	IsValid bool `json:"isValid"`

	// InvalidReason explains why the payment is invalid.
	InvalidReason string `json:"invalidReason,omitempty"`
}

// SettleResult is returned by the facilitator /settle endpoint.
type SettleResult struct {
	// Success reports whether the payment was settled.
	Success bool `json:"success"`

	// Error explains a failed settlement.
	Error string `json:"error,omitempty"`

	// TxHash is the settlement transaction hash.
	TxHash string `json:"txHash,omitempty"`

	// NetworkID is the chain the payment settled on.
	NetworkID string `json:"networkId,omitempty"`
}
