package helpers

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nacorid/x402-gate"
	"github.com/nacorid/x402-gate/encoding"
)

func TestSendPaymentRequired(t *testing.T) {
	rec := httptest.NewRecorder()
	req := &x402.PaymentRequirement{Scheme: x402.SchemeExact, MaxAmountRequired: "10000"}

	if err := SendPaymentRequired(rec, "X-PAYMENT header is required", req); err != nil {
		t.Fatalf("SendPaymentRequired() error = %v", err)
	}

	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("status = %d; want 402", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}

	var body x402.PaymentRequiredResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "X-PAYMENT header is required" {
		t.Errorf("error = %q", body.Error)
	}
	if body.PaymentDetails == nil || body.PaymentDetails.MaxAmountRequired != "10000" {
		t.Errorf("paymentDetails = %+v", body.PaymentDetails)
	}
}

func TestSendPaymentRequiredWithoutDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := SendPaymentRequired(rec, "boom", nil); err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["paymentDetails"]; ok {
		t.Error("paymentDetails should be omitted")
	}
}

func TestAddPaymentResponseHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := AddPaymentResponseHeader(rec, nil); err == nil {
		t.Error("expected error for nil settlement")
	}

	want := &x402.SettleResult{Success: true, TxHash: "0xabc", NetworkID: "84532"}
	if err := AddPaymentResponseHeader(rec, want); err != nil {
		t.Fatal(err)
	}
	got, err := encoding.DecodeSettlement(rec.Header().Get(x402.HeaderPaymentResponse))
	if err != nil {
		t.Fatalf("DecodeSettlement() error = %v", err)
	}
	if got != *want {
		t.Errorf("DecodeSettlement() = %+v; want %+v", got, *want)
	}
}

func TestBuildResourceURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/weather?city=paris", nil)
	if got := BuildResourceURL(req); got != "http://api.example.com/weather?city=paris" {
		t.Errorf("BuildResourceURL() = %s", got)
	}

	req.TLS = &tls.ConnectionState{}
	if got := BuildResourceURL(req); got != "https://api.example.com/weather?city=paris" {
		t.Errorf("BuildResourceURL() with TLS = %s", got)
	}
}
