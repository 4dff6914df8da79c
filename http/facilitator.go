package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nacorid/x402-gate"
	"github.com/nacorid/x402-gate/facilitator"
)

// AuthorizationProvider returns an Authorization header value for a facilitator request.
// It is called once per request and must be safe for concurrent use.
type AuthorizationProvider func(*http.Request) string

// OnBeforeFunc is invoked before a verify or settle call. Returning an error aborts the call.
type OnBeforeFunc func(ctx context.Context, paymentHeader string, requirement x402.PaymentRequirement) error

// OnAfterVerifyFunc is invoked after a verify call completes.
type OnAfterVerifyFunc func(ctx context.Context, paymentHeader string, requirement x402.PaymentRequirement, result *x402.VerifyResult, err error)

// OnAfterSettleFunc is invoked after a settle call completes.
type OnAfterSettleFunc func(ctx context.Context, paymentHeader string, requirement x402.PaymentRequirement, result *x402.SettleResult, err error)

// FacilitatorClient talks to a facilitator over HTTP.
//
// Each operation makes exactly one POST; failures are not retried.
// A TimeoutConfig value applies only when the caller's context has no deadline.
type FacilitatorClient struct {
	// BaseURL is the facilitator service URL (e.g., "https://x402.org/facilitator").
	BaseURL string

	// Client is the HTTP client to use for requests. If nil, http.DefaultClient is used.
	Client *http.Client

	// Timeouts bounds individual calls.
	Timeouts x402.TimeoutConfig

	// Authorization is a static Authorization header value.
	// AuthorizationProvider takes precedence when both are set.
	Authorization string

	// AuthorizationProvider computes the Authorization header per request.
	AuthorizationProvider AuthorizationProvider

	OnBeforeVerify OnBeforeFunc
	OnAfterVerify  OnAfterVerifyFunc
	OnBeforeSettle OnBeforeFunc
	OnAfterSettle  OnAfterSettleFunc
}

var _ facilitator.Interface = (*FacilitatorClient)(nil)

// NewFacilitatorClient returns a client for baseURL with default timeouts.
func NewFacilitatorClient(baseURL string) *FacilitatorClient {
	return &FacilitatorClient{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Timeouts: x402.DefaultTimeouts,
	}
}

func (c *FacilitatorClient) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

func (c *FacilitatorClient) setAuthorizationHeader(req *http.Request) {
	var authValue string
	if c.AuthorizationProvider != nil {
		authValue = c.AuthorizationProvider(req)
	} else if c.Authorization != "" {
		authValue = c.Authorization
	}
	if authValue != "" {
		req.Header.Set("Authorization", authValue)
	}
}

// Verify asks the facilitator whether the payment header satisfies requirement.
// A rejected payment is reported through VerifyResult.IsValid, not as an error.
// Transport failures, non-2xx statuses, bodies without isValid and OnBeforeVerify
// aborts all wrap x402.ErrFacilitatorUnavailable.
func (c *FacilitatorClient) Verify(ctx context.Context, paymentHeader string, requirement x402.PaymentRequirement) (*x402.VerifyResult, error) {
	if c.OnBeforeVerify != nil {
		if err := c.OnBeforeVerify(ctx, paymentHeader, requirement); err != nil {
			return nil, fmt.Errorf("%w: verify aborted: %w", x402.ErrFacilitatorUnavailable, err)
		}
	}

	var result *x402.VerifyResult
	var verifyResp verifyResponse
	err := c.post(ctx, "/verify", c.Timeouts.VerifyTimeout, paymentHeader, requirement, &verifyResp)
	if err == nil && verifyResp.IsValid == nil {
		err = fmt.Errorf("%w: /verify response missing isValid", x402.ErrFacilitatorUnavailable)
	}
	if err == nil {
		result = &x402.VerifyResult{
			IsValid:       *verifyResp.IsValid,
			InvalidReason: verifyResp.InvalidReason,
		}
	}

	if c.OnAfterVerify != nil {
		c.OnAfterVerify(ctx, paymentHeader, requirement, result, err)
	}
	return result, err
}

// Settle asks the facilitator to execute the payment.
// A refused settlement is reported through SettleResult.Success, not as an error.
func (c *FacilitatorClient) Settle(ctx context.Context, paymentHeader string, requirement x402.PaymentRequirement) (*x402.SettleResult, error) {
	if c.OnBeforeSettle != nil {
		if err := c.OnBeforeSettle(ctx, paymentHeader, requirement); err != nil {
			return nil, fmt.Errorf("%w: settle aborted: %w", x402.ErrFacilitatorUnavailable, err)
		}
	}

	var result *x402.SettleResult
	var settleResp settleResponse
	err := c.post(ctx, "/settle", c.Timeouts.SettleTimeout, paymentHeader, requirement, &settleResp)
	if err == nil && settleResp.Success == nil {
		err = fmt.Errorf("%w: /settle response missing success", x402.ErrFacilitatorUnavailable)
	}
	if err == nil {
		result = &x402.SettleResult{
			Success:   *settleResp.Success,
			Error:     settleResp.Error,
			TxHash:    settleResp.TxHash,
			NetworkID: settleResp.NetworkID,
		}
	}

	if c.OnAfterSettle != nil {
		c.OnAfterSettle(ctx, paymentHeader, requirement, result, err)
	}
	return result, err
}

// verifyResponse and settleResponse mirror the facilitator wire format with the
// required flags as pointers, so an answer that omits them is rejected.
type verifyResponse struct {
	IsValid       *bool  `json:"isValid"`
	InvalidReason string `json:"invalidReason"`
}

type settleResponse struct {
	Success   *bool  `json:"success"`
	Error     string `json:"error"`
	TxHash    string `json:"txHash"`
	NetworkID string `json:"networkId"`
}

func (c *FacilitatorClient) post(ctx context.Context, path string, timeout time.Duration, paymentHeader string, requirement x402.PaymentRequirement, out interface{}) error {
	data, err := json.Marshal(facilitator.Request{
		Payload: paymentHeader,
		Details: requirement,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	reqCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", x402.ErrFacilitatorUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	c.setAuthorizationHeader(httpReq)

	httpResp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", x402.ErrFacilitatorUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return parseErrorResponse(httpResp, path)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v", x402.ErrFacilitatorUnavailable, path, err)
	}
	return nil
}

// parseErrorResponse extracts error details from a non-2xx facilitator response.
func parseErrorResponse(resp *http.Response, path string) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errBody map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &errBody); err == nil {
		for _, key := range []string{"error", "invalidReason", "message"} {
			if reason, ok := errBody[key].(string); ok && reason != "" {
				return fmt.Errorf("%w: %s: status %d, reason: %s", x402.ErrFacilitatorUnavailable, path, resp.StatusCode, reason)
			}
		}
	}

	if len(bodyBytes) > 0 && len(bodyBytes) < 500 {
		return fmt.Errorf("%w: %s: status %d, body: %s", x402.ErrFacilitatorUnavailable, path, resp.StatusCode, string(bodyBytes))
	}
	return fmt.Errorf("%w: %s: status %d", x402.ErrFacilitatorUnavailable, path, resp.StatusCode)
}
