// Package helpers provides internal HTTP utilities for the x402 gate.
package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nacorid/x402-gate"
	"github.com/nacorid/x402-gate/encoding"
)

// ErrNilSettlement is returned when settlement is nil in AddPaymentResponseHeader.
var ErrNilSettlement = errors.New("settlement is nil")

// SendPaymentRequired writes a 402 Payment Required JSON response.
// requirement may be nil when no requirement could be built.
func SendPaymentRequired(w http.ResponseWriter, errMsg string, requirement *x402.PaymentRequirement) error {
	response := x402.PaymentRequiredResponse{
		Error:          errMsg,
		PaymentDetails: requirement,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusPaymentRequired)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("encoding PaymentRequired response: %w", err)
	}
	return nil
}

// SendHTML writes an HTML body with the given status.
func SendHTML(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

// AddPaymentResponseHeader adds the X-PAYMENT-RESPONSE header with settlement information.
// Returns an error if settlement is nil or encoding fails.
func AddPaymentResponseHeader(w http.ResponseWriter, settlement *x402.SettleResult) error {
	if settlement == nil {
		return fmt.Errorf("AddPaymentResponseHeader: %w", ErrNilSettlement)
	}
	encoded, err := encoding.EncodeSettlement(*settlement)
	if err != nil {
		return fmt.Errorf("AddPaymentResponseHeader: encode settlement: %w", err)
	}
	w.Header().Set(x402.HeaderPaymentResponse, encoded)
	return nil
}

// BuildResourceURL constructs the full URL of the requested resource.
func BuildResourceURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
