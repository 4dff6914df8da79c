// Package encoding provides the base64 JSON codecs used by x402 headers.
package encoding

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nacorid/x402-gate"
)

// EncodePayment converts a PaymentPayload to a base64-encoded JSON string
// suitable for the X-PAYMENT header.
//
// Returns an error if JSON marshaling fails.
func EncodePayment(payment x402.PaymentPayload) (string, error) {
	paymentJSON, err := json.Marshal(payment)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment: %w", err)
	}
	return base64.StdEncoding.EncodeToString(paymentJSON), nil
}

// DecodePayment converts an X-PAYMENT header value to a PaymentPayload.
//
// Errors wrap x402.ErrMalformedHeader, or x402.ErrUnsupportedScheme when the
// payload names an unknown scheme.
func DecodePayment(encoded string) (x402.PaymentPayload, error) {
	var payment x402.PaymentPayload

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return payment, fmt.Errorf("%w: decode base64: %v", x402.ErrMalformedHeader, err)
	}

	if err := json.Unmarshal(decoded, &payment); err != nil {
		if errors.Is(err, x402.ErrUnsupportedScheme) {
			return payment, err
		}
		return payment, fmt.Errorf("%w: %v", x402.ErrMalformedHeader, err)
	}

	return payment, nil
}

// EncodeSettlement converts a SettleResult to a base64-encoded JSON string.
// This is the value of the X-PAYMENT-RESPONSE header.
//
// Returns an error if JSON marshaling fails.
func EncodeSettlement(settlement x402.SettleResult) (string, error) {
	settlementJSON, err := json.Marshal(settlement)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settlement: %w", err)
	}
	return base64.StdEncoding.EncodeToString(settlementJSON), nil
}

// DecodeSettlement converts an X-PAYMENT-RESPONSE header value to a SettleResult.
//
// Returns an error if base64 decoding or JSON unmarshaling fails.
func DecodeSettlement(encoded string) (x402.SettleResult, error) {
	var settlement x402.SettleResult

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return settlement, fmt.Errorf("failed to decode base64: %w", err)
	}

	if err := json.Unmarshal(decoded, &settlement); err != nil {
		return settlement, fmt.Errorf("failed to unmarshal settlement: %w", err)
	}

	return settlement, nil
}
