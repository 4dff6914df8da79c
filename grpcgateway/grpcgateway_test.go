package grpcgateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/nacorid/x402-gate"
	x402http "github.com/nacorid/x402-gate/http"
)

func verifiedRequest() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/v1/jokes", nil)
	ctx := x402http.WithPaymentInfo(r.Context(), &x402http.PaymentInfo{
		RequestID: "req-1",
		Requirement: x402.PaymentRequirement{
			Scheme:            x402.SchemeExact,
			NetworkID:         x402.NetworkBaseSepolia,
			MaxAmountRequired: "10000",
			PayToAddress:      "0x209693Bc6afc0C5328bA36FaF03C514EF312287C",
			Resource:          "http://example.com/v1/jokes",
		},
		Verification: x402.VerifyResult{IsValid: true},
	})
	return r.WithContext(ctx)
}

func TestPaymentMetadataRoundTrip(t *testing.T) {
	r := verifiedRequest()
	md := PaymentMetadata(r.Context(), r)

	ctx := metadata.NewIncomingContext(context.Background(), md)
	payment, ok := GetPaymentFromGRPCContext(ctx)
	require.True(t, ok)
	assert.Equal(t, &PaymentContext{
		Verified:  true,
		Amount:    "10000",
		Network:   x402.NetworkBaseSepolia,
		PayTo:     "0x209693Bc6afc0C5328bA36FaF03C514EF312287C",
		Scheme:    x402.SchemeExact,
		Resource:  "http://example.com/v1/jokes",
		RequestID: "req-1",
	}, payment)
}

func TestPaymentMetadataUnpaid(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/jokes", nil)
	assert.Empty(t, PaymentMetadata(r.Context(), r))

	_, ok := GetPaymentFromGRPCContext(context.Background())
	assert.False(t, ok)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(MetadataKeyVerified, "false"))
	_, ok = GetPaymentFromGRPCContext(ctx)
	assert.False(t, ok)
}

func TestRequirePaymentInterceptor(t *testing.T) {
	handler := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }
	interceptor := RequirePaymentInterceptor("/jokes.v1.JokeService/GetJoke")

	paid := &grpc.UnaryServerInfo{FullMethod: "/jokes.v1.JokeService/GetJoke"}
	free := &grpc.UnaryServerInfo{FullMethod: "/jokes.v1.JokeService/Health"}

	_, err := interceptor(context.Background(), nil, paid, handler)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	resp, err := interceptor(context.Background(), nil, free, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	r := verifiedRequest()
	ctx := metadata.NewIncomingContext(context.Background(), PaymentMetadata(r.Context(), r))
	resp, err = interceptor(ctx, nil, paid, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

type approvingFacilitator struct{}

func (approvingFacilitator) Verify(context.Context, string, x402.PaymentRequirement) (*x402.VerifyResult, error) {
	return &x402.VerifyResult{IsValid: true}, nil
}

func (approvingFacilitator) Settle(context.Context, string, x402.PaymentRequirement) (*x402.SettleResult, error) {
	return &x402.SettleResult{Success: true, TxHash: "0x01"}, nil
}

func TestGatewayMuxReceivesPaymentMetadata(t *testing.T) {
	mux := runtime.NewServeMux(WithPaymentMetadata())

	var got *PaymentContext
	err := mux.HandlePath(http.MethodGet, "/v1/jokes", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		ctx, err := runtime.AnnotateIncomingContext(r.Context(), mux, r, "/jokes.v1.JokeService/GetJoke",
			runtime.WithHTTPPathPattern("/v1/jokes"))
		require.NoError(t, err)
		got, _ = GetPaymentFromGRPCContext(ctx)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, err)

	gate, err := x402http.NewX402Middleware(x402http.Config{
		Amount:      "$0.05",
		PayTo:       "0x209693Bc6afc0C5328bA36FaF03C514EF312287C",
		Facilitator: approvingFacilitator{},
		Testnet:     true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/jokes", nil)
	req.Header.Set(x402.HeaderPayment, "cGF5bWVudA==")
	rec := httptest.NewRecorder()
	gate(mux).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "50000", got.Amount)
	assert.Equal(t, x402.NetworkBaseSepolia, got.Network)
	assert.NotEmpty(t, got.RequestID)
}
