package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nacorid/x402-gate"
	"github.com/nacorid/x402-gate/facilitator"
	"github.com/nacorid/x402-gate/metrics"
)

// DefaultFacilitatorURL is the public x402.org facilitator. It is never used implicitly.
const DefaultFacilitatorURL = "https://x402.org/facilitator"

// Config holds the configuration for the x402 payment gate.
type Config struct {
	// Amount is the price: a dollar string such as "$0.01" or an integer in USDC base units.
	Amount interface{}

	// PayTo is the address that receives payments.
	PayTo string `validate:"required,evmaddress"`

	// Paths limits gating to matching request paths. Entries are exact paths,
	// "*" for every path, or "/prefix/*". Empty gates every path.
	Paths []string `validate:"dive,required,startswith=/|eq=*"`

	Description string
	MimeType    string

	// MaxDeadlineSeconds defaults to x402.DefaultMaxDeadlineSeconds when zero.
	MaxDeadlineSeconds int `validate:"gte=0"`

	OutputSchema interface{}
	Extra        map[string]interface{}

	// FacilitatorURL is the facilitator base URL. Required unless Facilitator is set.
	FacilitatorURL string `validate:"omitempty,url"`

	// Facilitator replaces the HTTP facilitator client when set.
	Facilitator facilitator.Interface

	// Network is the chain id. When empty it is derived from Testnet.
	Network string

	// Testnet selects Base Sepolia instead of Base when Network is empty.
	Testnet bool

	// Resource overrides the request URL in payment requirements.
	Resource string `validate:"omitempty,url"`

	// CustomPaywallHTML replaces the default paywall page for browser requests.
	CustomPaywallHTML string

	// Paywall renders the HTML 402 page. Ignored when CustomPaywallHTML is set.
	Paywall PaywallRenderer

	// Classifier decides whether a request gets the HTML paywall. Defaults to BrowserClassifier.
	Classifier RequestClassifier

	FacilitatorAuthorization         string
	FacilitatorAuthorizationProvider AuthorizationProvider

	// Timeouts bounds facilitator calls. Defaults to x402.DefaultTimeouts.
	Timeouts x402.TimeoutConfig

	// HTTPClient is used for facilitator calls. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	Logger         *zap.Logger
	Metrics        metrics.Recorder
	OnPaymentEvent x402.PaymentCallback
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("evmaddress", func(fl validator.FieldLevel) bool {
		return common.IsHexAddress(fl.Field().String())
	})
	return v
}

// Validate reports configuration errors wrapped in x402.ErrInvalidConfig.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", x402.ErrInvalidConfig, err)
	}
	if c.Facilitator == nil && c.FacilitatorURL == "" {
		return fmt.Errorf("%w: FacilitatorURL is required", x402.ErrInvalidConfig)
	}
	if !c.Timeouts.IsZero() {
		if err := c.Timeouts.Validate(); err != nil {
			return fmt.Errorf("%w: %v", x402.ErrInvalidConfig, err)
		}
	}
	return nil
}

// NetworkID returns the configured chain id.
func (c Config) NetworkID() string {
	if c.Network != "" {
		return c.Network
	}
	return x402.DefaultNetwork(c.Testnet)
}

func (c Config) facilitatorClient() facilitator.Interface {
	if c.Facilitator != nil {
		return c.Facilitator
	}
	timeouts := c.Timeouts
	if timeouts.IsZero() {
		timeouts = x402.DefaultTimeouts
	}
	return &FacilitatorClient{
		BaseURL:               strings.TrimRight(c.FacilitatorURL, "/"),
		Client:                c.HTTPClient,
		Timeouts:              timeouts,
		Authorization:         c.FacilitatorAuthorization,
		AuthorizationProvider: c.FacilitatorAuthorizationProvider,
	}
}
