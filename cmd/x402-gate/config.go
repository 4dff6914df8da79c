package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nacorid/x402-gate"
)

type Config struct {
	ListenAddr  string
	UpstreamURL *url.URL

	Amount             string
	PayTo              string
	Network            string
	Testnet            bool
	FacilitatorURL     string
	Paths              []string
	Description        string
	MimeType           string
	MaxDeadlineSeconds int
	Resource           string
	PaywallHTMLFile    string

	FacilitatorAuthorization string
	VerifyTimeout            time.Duration
	SettleTimeout            time.Duration

	AMQPURL   string
	AMQPQueue string

	LogLevel string
}

func LoadConfig() (*Config, error) {
	upstream := getEnv("UPSTREAM_URL", "")
	if upstream == "" {
		return nil, fmt.Errorf("UPSTREAM_URL is required")
	}
	upstreamURL, err := url.Parse(upstream)
	if err != nil || upstreamURL.Scheme == "" || upstreamURL.Host == "" {
		return nil, fmt.Errorf("invalid UPSTREAM_URL %q", upstream)
	}

	maxDeadline, err := getEnvAsInt("X402_MAX_DEADLINE_SECONDS", 0)
	if err != nil {
		return nil, err
	}
	testnet, err := getEnvAsBool("X402_TESTNET", false)
	if err != nil {
		return nil, err
	}
	verifyTimeout, err := getEnvAsDuration("X402_VERIFY_TIMEOUT", x402.DefaultTimeouts.VerifyTimeout)
	if err != nil {
		return nil, err
	}
	settleTimeout, err := getEnvAsDuration("X402_SETTLE_TIMEOUT", x402.DefaultTimeouts.SettleTimeout)
	if err != nil {
		return nil, err
	}

	return &Config{
		ListenAddr:               getEnv("LISTEN_ADDR", ":8080"),
		UpstreamURL:              upstreamURL,
		Amount:                   getEnv("X402_AMOUNT", ""),
		PayTo:                    getEnv("X402_PAY_TO", ""),
		Network:                  getEnv("X402_NETWORK", ""),
		Testnet:                  testnet,
		FacilitatorURL:           getEnv("X402_FACILITATOR_URL", ""),
		Paths:                    splitList(getEnv("X402_PATHS", "")),
		Description:              getEnv("X402_DESCRIPTION", ""),
		MimeType:                 getEnv("X402_MIME_TYPE", ""),
		MaxDeadlineSeconds:       maxDeadline,
		Resource:                 getEnv("X402_RESOURCE", ""),
		PaywallHTMLFile:          getEnv("X402_PAYWALL_HTML_FILE", ""),
		FacilitatorAuthorization: getEnv("FACILITATOR_AUTHORIZATION", ""),
		VerifyTimeout:            verifyTimeout,
		SettleTimeout:            settleTimeout,
		AMQPURL:                  getEnv("AMQP_URL", ""),
		AMQPQueue:                getEnv("AMQP_QUEUE", "x402.payment_events"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
