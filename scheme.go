package x402

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// SchemePayload is the scheme-specific part of a PaymentPayload.
// The set of implementations is closed: each one is registered in schemePayloads.
type SchemePayload interface {
	// SchemeName returns the scheme identifier the payload belongs to.
	SchemeName() string

	isSchemePayload()
}

// ExactPayload is the payload of the "exact" scheme: an EIP-3009 transferWithAuthorization.
type ExactPayload struct {
	// Signer is the address that signed the authorization.
	Signer string `json:"signer"`

	// Authorization contains the signed transfer parameters.
	Authorization EIP3009Authorization `json:"authorization"`
}

// EIP3009Authorization contains transferWithAuthorization parameters.
type EIP3009Authorization struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	Value       *big.Int `json:"value"`
	ValidAfter  int64    `json:"validAfter"`
	ValidBefore int64    `json:"validBefore"`
	Nonce       string   `json:"nonce"`
	Version     string   `json:"version"`
}

// SchemeName implements SchemePayload.
func (ExactPayload) SchemeName() string { return SchemeExact }

func (ExactPayload) isSchemePayload() {}

var schemePayloads = map[string]func() SchemePayload{
	SchemeExact: func() SchemePayload { return &ExactPayload{} },
}

// IsSupportedScheme reports whether scheme has a registered payload type.
func IsSupportedScheme(scheme string) bool {
	_, ok := schemePayloads[scheme]
	return ok
}

// UnmarshalJSON decodes the payload into the concrete type selected by Scheme.
func (p *PaymentPayload) UnmarshalJSON(data []byte) error {
	type plain PaymentPayload
	var raw struct {
		plain
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = PaymentPayload(raw.plain)
	p.Payload = nil

	newPayload, ok := schemePayloads[raw.Scheme]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, raw.Scheme)
	}
	if len(raw.Payload) == 0 || string(raw.Payload) == "null" {
		return nil
	}

	payload := newPayload()
	if err := json.Unmarshal(raw.Payload, payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", raw.Scheme, err)
	}
	p.Payload = payload
	return nil
}
