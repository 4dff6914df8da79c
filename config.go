package x402

import (
	"fmt"
	"time"
)

// TimeoutConfig holds timeout configuration for facilitator calls.
// A timeout only applies when the caller's context carries no deadline.
type TimeoutConfig struct {
	// VerifyTimeout bounds a single /verify call.
	VerifyTimeout time.Duration

	// SettleTimeout bounds a single /settle call.
	SettleTimeout time.Duration
}

// DefaultTimeouts provides defaults for facilitator calls.
var DefaultTimeouts = TimeoutConfig{
	VerifyTimeout: 5 * time.Second,
	SettleTimeout: 60 * time.Second,
}

// WithVerifyTimeout returns a new TimeoutConfig with updated verify timeout.
func (tc TimeoutConfig) WithVerifyTimeout(d time.Duration) TimeoutConfig {
	tc.VerifyTimeout = d
	return tc
}

// WithSettleTimeout returns a new TimeoutConfig with updated settle timeout.
func (tc TimeoutConfig) WithSettleTimeout(d time.Duration) TimeoutConfig {
	tc.SettleTimeout = d
	return tc
}

// IsZero reports whether no timeout has been configured.
func (tc TimeoutConfig) IsZero() bool {
	return tc.VerifyTimeout == 0 && tc.SettleTimeout == 0
}

// Validate ensures timeout values are reasonable.
func (tc TimeoutConfig) Validate() error {
	if tc.VerifyTimeout <= 0 {
		return fmt.Errorf("verify timeout must be positive, got %v", tc.VerifyTimeout)
	}
	if tc.SettleTimeout <= 0 {
		return fmt.Errorf("settle timeout must be positive, got %v", tc.SettleTimeout)
	}
	if tc.SettleTimeout < tc.VerifyTimeout {
		return fmt.Errorf("settle timeout (%v) should be >= verify timeout (%v)",
			tc.SettleTimeout, tc.VerifyTimeout)
	}
	return nil
}
