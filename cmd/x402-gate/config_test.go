package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacorid/x402-gate"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://localhost:9000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "localhost:9000", cfg.UpstreamURL.Host)
	assert.False(t, cfg.Testnet)
	assert.Empty(t, cfg.Paths)
	assert.Equal(t, "x402.payment_events", cfg.AMQPQueue)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, x402.DefaultTimeouts.VerifyTimeout, cfg.VerifyTimeout)
	assert.Equal(t, x402.DefaultTimeouts.SettleTimeout, cfg.SettleTimeout)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "https://api.internal:8443")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("X402_AMOUNT", "$0.01")
	t.Setenv("X402_PAY_TO", "0x209693Bc6afc0C5328bA36FaF03C514EF312287C")
	t.Setenv("X402_TESTNET", "true")
	t.Setenv("X402_PATHS", "/premium/*, /report ,")
	t.Setenv("X402_MAX_DEADLINE_SECONDS", "120")
	t.Setenv("AMQP_QUEUE", "payments")
	t.Setenv("X402_VERIFY_TIMEOUT", "2s")
	t.Setenv("X402_SETTLE_TIMEOUT", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "$0.01", cfg.Amount)
	assert.True(t, cfg.Testnet)
	assert.Equal(t, []string{"/premium/*", "/report"}, cfg.Paths)
	assert.Equal(t, 120, cfg.MaxDeadlineSeconds)
	assert.Equal(t, "payments", cfg.AMQPQueue)
	assert.Equal(t, 2*time.Second, cfg.VerifyTimeout)
	assert.Equal(t, 90*time.Second, cfg.SettleTimeout)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing upstream", map[string]string{}},
		{"relative upstream", map[string]string{"UPSTREAM_URL": "/api"}},
		{"bad deadline", map[string]string{"UPSTREAM_URL": "http://u", "X402_MAX_DEADLINE_SECONDS": "soon"}},
		{"bad testnet", map[string]string{"UPSTREAM_URL": "http://u", "X402_TESTNET": "maybe"}},
		{"bad settle timeout", map[string]string{"UPSTREAM_URL": "http://u", "X402_SETTLE_TIMEOUT": "forever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("UPSTREAM_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
