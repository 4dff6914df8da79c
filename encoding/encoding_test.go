package encoding

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nacorid/x402-gate"
)

func TestSettlementHeaderRoundTrip(t *testing.T) {
	want := x402.SettleResult{
		Success:   true,
		TxHash:    "0x1234",
		NetworkID: x402.NetworkBaseSepolia,
	}

	encoded, err := EncodeSettlement(want)
	if err != nil {
		t.Fatalf("EncodeSettlement() error = %v", err)
	}

	got, err := DecodeSettlement(encoded)
	if err != nil {
		t.Fatalf("DecodeSettlement() error = %v", err)
	}
	if got != want {
		t.Errorf("DecodeSettlement() = %+v; want %+v", got, want)
	}
}

func TestDecodePayment(t *testing.T) {
	payment := x402.PaymentPayload{
		X402Version: x402.X402Version,
		Scheme:      x402.SchemeExact,
		NetworkID:   x402.NetworkBase,
		Payload: &x402.ExactPayload{
			Signer: "0x857b06519E91e3A54538791bDbb0E22373e36b66",
			Authorization: x402.EIP3009Authorization{
				Value: big.NewInt(10000),
				Nonce: "0x01",
			},
		},
	}

	encoded, err := EncodePayment(payment)
	if err != nil {
		t.Fatalf("EncodePayment() error = %v", err)
	}

	decoded, err := DecodePayment(encoded)
	if err != nil {
		t.Fatalf("DecodePayment() error = %v", err)
	}
	exact, ok := decoded.Payload.(*x402.ExactPayload)
	if !ok {
		t.Fatalf("Payload type = %T", decoded.Payload)
	}
	if exact.Authorization.Value.Cmp(big.NewInt(10000)) != 0 {
		t.Errorf("Value = %s", exact.Authorization.Value)
	}
}

func TestDecodePaymentErrors(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    error
	}{
		{"not base64", "%%%", x402.ErrMalformedHeader},
		{"not json", "bm90IGpzb24=", x402.ErrMalformedHeader},
		{"unknown scheme", "eyJzY2hlbWUiOiJ1cHRvIn0=", x402.ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayment(tt.encoded)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodePayment() error = %v; want %v", err, tt.want)
			}
		})
	}
}
