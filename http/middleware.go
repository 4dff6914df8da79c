// Package http provides the x402 payment gate for net/http servers and the
// HTTP client for facilitator services.
package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nacorid/x402-gate"
	"github.com/nacorid/x402-gate/facilitator"
	"github.com/nacorid/x402-gate/http/internal/helpers"
	"github.com/nacorid/x402-gate/metrics"
)

// HeaderRequestID is read from incoming requests to correlate gate logs and events.
const HeaderRequestID = "X-Request-ID"

// Gate enforces payment for a set of request paths.
// A Gate is immutable after NewGate and safe for concurrent use.
type Gate struct {
	facilitator facilitator.Interface
	requirement x402.RequirementConfig
	amount      *big.Int
	testnet     bool
	paths       pathFilter
	classifier  RequestClassifier
	paywall     PaywallRenderer
	logger      *zap.Logger
	metrics     metrics.Recorder
	onEvent     x402.PaymentCallback
}

// NewGate validates config and builds a Gate.
// Errors wrap x402.ErrInvalidConfig, x402.ErrInvalidAmount or x402.ErrUnsupportedNetwork.
func NewGate(config Config) (*Gate, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	amount, err := x402.ParseMoney(config.Amount)
	if err != nil {
		return nil, err
	}

	network := config.NetworkID()
	chain, err := x402.GetChainConfig(network)
	if err != nil {
		return nil, err
	}

	g := &Gate{
		facilitator: config.facilitatorClient(),
		requirement: x402.RequirementConfig{
			NetworkID:          network,
			Amount:             amount,
			PayTo:              config.PayTo,
			Resource:           config.Resource,
			Description:        config.Description,
			MimeType:           config.MimeType,
			MaxDeadlineSeconds: config.MaxDeadlineSeconds,
			OutputSchema:       config.OutputSchema,
			Extra:              config.Extra,
		},
		amount:     amount,
		testnet:    chain.Testnet,
		paths:      newPathFilter(config.Paths),
		classifier: config.Classifier,
		paywall:    config.Paywall,
		logger:     config.Logger,
		metrics:    config.Metrics,
		onEvent:    config.OnPaymentEvent,
	}
	if config.CustomPaywallHTML != "" {
		g.paywall = StaticPaywall(config.CustomPaywallHTML)
	}
	if g.paywall == nil {
		g.paywall = DefaultPaywall{}
	}
	if g.classifier == nil {
		g.classifier = BrowserClassifier{}
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.metrics == nil {
		g.metrics = metrics.NoopRecorder{}
	}
	return g, nil
}

// NewX402Middleware creates the payment gate as net/http middleware.
func NewX402Middleware(config Config) (func(http.Handler) http.Handler, error) {
	gate, err := NewGate(config)
	if err != nil {
		return nil, err
	}
	return gate.Middleware, nil
}

// Middleware wraps next with the gate.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.Serve(w, r, next)
	})
}

// Serve runs one request through the gate. next is invoked at most once, and only
// for ungated paths or after a successful verification.
func (g *Gate) Serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	labels := map[string]string{"network": g.requirement.NetworkID}

	if !g.paths.Match(r.URL.Path) {
		g.metrics.IncCounter(metrics.OutcomeBypassed, labels)
		next.ServeHTTP(w, r)
		return
	}

	requestID := r.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := g.logger.With(
		zap.String("request_id", requestID),
		zap.String("path", r.URL.Path),
		zap.String("network", g.requirement.NetworkID),
	)

	requirement, err := x402.BuildRequirement(g.requirement, helpers.BuildResourceURL(r))
	if err != nil {
		logger.Error("failed to build payment requirement", zap.Error(err))
		g.metrics.IncCounter(metrics.OutcomeConfigError, labels)
		g.emit(x402.PaymentEventFailure, x402.StageVerify, requestID, requirement,
			x402.NewPaymentError(x402.ErrCodeRequirementUnavailable, "payment requirement unavailable", err), 0, "")
		g.sendPaymentRequired(w, logger, err.Error(), nil)
		return
	}

	paymentHeader := r.Header.Get(x402.HeaderPayment)
	if paymentHeader == "" {
		logger.Info("no payment header provided")
		g.metrics.IncCounter(metrics.OutcomePaymentRequired, labels)
		g.emit(x402.PaymentEventFailure, x402.StageVerify, requestID, requirement,
			x402.NewPaymentError(x402.ErrCodePaymentRequired, x402.HeaderPayment+" header is required", x402.ErrPaymentRequired), 0, "")
		if g.classifier.WantsHTML(r) {
			g.sendPaywall(w, r, logger, requirement)
			return
		}
		g.sendPaymentRequired(w, logger, x402.HeaderPayment+" header is required", &requirement)
		return
	}

	g.emit(x402.PaymentEventAttempt, x402.StageVerify, requestID, requirement, nil, 0, "")

	logger.Info("verifying payment")
	start := time.Now()
	verifyResp, err := g.facilitator.Verify(r.Context(), paymentHeader, requirement)
	if err == nil && verifyResp == nil {
		err = fmt.Errorf("%w: empty verify response", x402.ErrFacilitatorUnavailable)
	}
	elapsed := time.Since(start)
	g.metrics.ObserveLatency(metrics.OperationVerify, elapsed, labels)
	if err != nil {
		logger.Error("facilitator verification failed", zap.Error(err))
		g.metrics.IncCounter(metrics.OutcomeVerifyError, labels)
		g.emit(x402.PaymentEventFailure, x402.StageVerify, requestID, requirement,
			x402.NewPaymentError(x402.ErrCodeVerificationFailed, "payment verification failed", err), elapsed, "")
		g.sendPaymentRequired(w, logger, "Payment verification failed: "+err.Error(), &requirement)
		return
	}
	if !verifyResp.IsValid {
		logger.Warn("payment verification failed", zap.String("reason", verifyResp.InvalidReason))
		g.metrics.IncCounter(metrics.OutcomeInvalidPayment, labels)
		g.emit(x402.PaymentEventFailure, x402.StageVerify, requestID, requirement,
			x402.NewPaymentError(x402.ErrCodeInvalidPayment, verifyResp.InvalidReason, x402.ErrInvalidPayment), elapsed, "")
		g.sendPaymentRequired(w, logger, "Invalid payment: "+verifyResp.InvalidReason, &requirement)
		return
	}

	logger.Info("payment verified")

	ctx := WithPaymentInfo(r.Context(), &PaymentInfo{
		RequestID:    requestID,
		Requirement:  requirement,
		Verification: *verifyResp,
	})
	capture := newResponseCapture()
	next.ServeHTTP(capture, r.WithContext(ctx))

	if !capture.Succeeded() {
		logger.Warn("handler returned non-success, skipping payment settlement", zap.Int("status", capture.Status()))
		g.metrics.IncCounter(metrics.OutcomeHandlerFailed, labels)
		g.replay(capture, w, logger)
		return
	}

	logger.Info("settling payment")
	start = time.Now()
	settleResp, err := g.facilitator.Settle(r.Context(), paymentHeader, requirement)
	if err == nil && settleResp == nil {
		err = fmt.Errorf("%w: empty settle response", x402.ErrFacilitatorUnavailable)
	}
	elapsed = time.Since(start)
	g.metrics.ObserveLatency(metrics.OperationSettle, elapsed, labels)
	if err == nil && !settleResp.Success {
		err = x402.NewPaymentError(x402.ErrCodeSettlementFailed, settleResp.Error, x402.ErrSettlementFailed)
		logger.Warn("settlement unsuccessful", zap.String("reason", settleResp.Error))
		g.metrics.IncCounter(metrics.OutcomeSettleFailed, labels)
		g.emit(x402.PaymentEventFailure, x402.StageSettle, requestID, requirement, err, elapsed, "")
		g.sendPaymentRequired(w, logger, "Settle failed: "+settleResp.Error, &requirement)
		return
	}
	if err != nil {
		logger.Error("settlement failed", zap.Error(err))
		g.metrics.IncCounter(metrics.OutcomeSettleFailed, labels)
		g.emit(x402.PaymentEventFailure, x402.StageSettle, requestID, requirement,
			x402.NewPaymentError(x402.ErrCodeSettlementFailed, "payment settlement failed", err), elapsed, "")
		g.sendPaymentRequired(w, logger, "Settle failed: "+err.Error(), &requirement)
		return
	}

	logger.Info("payment settled", zap.String("tx_hash", settleResp.TxHash))
	g.metrics.IncCounter(metrics.OutcomeSettled, labels)
	g.emit(x402.PaymentEventSuccess, x402.StageSettle, requestID, requirement, nil, elapsed, settleResp.TxHash)

	if err := helpers.AddPaymentResponseHeader(capture, settleResp); err != nil {
		logger.Warn("failed to add payment response header", zap.Error(err))
	}
	g.replay(capture, w, logger)
}

func (g *Gate) replay(capture *responseCapture, w http.ResponseWriter, logger *zap.Logger) {
	if err := capture.replay(w); err != nil {
		logger.Debug("failed to write response", zap.Error(err))
	}
}

func (g *Gate) sendPaymentRequired(w http.ResponseWriter, logger *zap.Logger, errMsg string, requirement *x402.PaymentRequirement) {
	if err := helpers.SendPaymentRequired(w, errMsg, requirement); err != nil {
		logger.Error("failed to send payment required response", zap.Error(err))
	}
}

func (g *Gate) sendPaywall(w http.ResponseWriter, r *http.Request, logger *zap.Logger, requirement x402.PaymentRequirement) {
	data := PaywallData{
		Amount:         json.Number(x402.FormatMoney(g.amount)),
		PaymentDetails: requirement,
		Testnet:        g.testnet,
		CurrentURL:     helpers.BuildResourceURL(r),
		Config:         newPaywallConfig(),
	}

	var buf bytes.Buffer
	if err := g.paywall.RenderPaywall(&buf, data); err != nil {
		logger.Error("failed to render paywall", zap.Error(err))
		g.sendPaymentRequired(w, logger, x402.HeaderPayment+" header is required", &requirement)
		return
	}
	if err := helpers.SendHTML(w, http.StatusPaymentRequired, buf.Bytes()); err != nil {
		logger.Debug("failed to write paywall", zap.Error(err))
	}
}

func (g *Gate) emit(eventType x402.PaymentEventType, stage x402.PaymentStage, requestID string, requirement x402.PaymentRequirement, err error, d time.Duration, txHash string) {
	if g.onEvent == nil {
		return
	}
	event := x402.NewPaymentEvent(eventType, stage, requirement)
	event.RequestID = requestID
	event.Error = err
	event.Duration = d
	event.Transaction = txHash
	g.onEvent(event)
}
