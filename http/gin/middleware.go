// Package gin provides Gin-compatible middleware for x402 payment gating.
// This package is a thin adapter that runs the same gate as the http package
// inside a gin handler chain.
package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	x402http "github.com/nacorid/x402-gate/http"
)

// Config is an alias for x402http.Config for convenience.
type Config = x402http.Config

// PaymentContextKey is the gin context key for storing verified payment information.
const PaymentContextKey = "x402_payment"

// NewX402Middleware creates a new x402 payment middleware for Gin.
//
// The middleware:
//   - Returns 402 Payment Required when the X-PAYMENT header is missing or invalid
//   - Verifies payments with the facilitator before running the rest of the chain
//   - Buffers the response of the remaining handlers and settles only on 2xx
//   - Stores *x402http.PaymentInfo in the gin context under PaymentContextKey
//   - Calls c.Abort() whenever the chain is not run
//
// Example usage:
//
//	r := gin.Default()
//	mw, err := ginx402.NewX402Middleware(ginx402.Config{
//	    Amount:         "$0.01",
//	    PayTo:          "0x209693Bc6afc0C5328bA36FaF03C514EF312287C",
//	    FacilitatorURL: x402http.DefaultFacilitatorURL,
//	    Testnet:        true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.GET("/weather", mw, func(c *gin.Context) {
//	    c.JSON(200, gin.H{"weather": "sunny"})
//	})
func NewX402Middleware(config Config) (gin.HandlerFunc, error) {
	gate, err := x402http.NewGate(config)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		forwarded := false
		original := c.Writer

		gate.Serve(original, c.Request, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			forwarded = true
			if info := x402http.GetPaymentFromContext(r.Context()); info != nil {
				c.Set(PaymentContextKey, info)
			}

			writer := newResponseWriter(original, w)
			c.Request = r
			c.Writer = writer
			// Restored on panic too, so an outer gin.Recovery writes its 500
			// to the client instead of a capture that is never replayed.
			defer func() { c.Writer = original }()
			c.Next()
			writer.WriteHeaderNow()
		}))

		if !forwarded {
			c.Abort()
		}
	}, nil
}

// GetPaymentFromContext returns the verified payment stored by the middleware, or nil.
func GetPaymentFromContext(c *gin.Context) *x402http.PaymentInfo {
	value, exists := c.Get(PaymentContextKey)
	if !exists {
		return nil
	}
	info, ok := value.(*x402http.PaymentInfo)
	if !ok {
		return nil
	}
	return info
}
