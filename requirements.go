package x402

import (
	"fmt"
	"math/big"
)

// DefaultMaxDeadlineSeconds is used when RequirementConfig.MaxDeadlineSeconds is zero.
const DefaultMaxDeadlineSeconds = 60

// RequirementConfig holds the per-gate inputs of BuildRequirement.
type RequirementConfig struct {
	// NetworkID selects the chain and its USDC contract.
	NetworkID string

	// Amount is the price in USDC base units.
	Amount *big.Int

	// PayTo is the recipient address, copied verbatim.
	PayTo string

	// Resource overrides the request URL when set.
	Resource string

	Description        string
	MimeType           string
	MaxDeadlineSeconds int
	OutputSchema       interface{}
	Extra              map[string]interface{}
}

// BuildRequirement assembles the PaymentRequirement for one request.
// The resource is cfg.Resource when set and requestURL otherwise.
func BuildRequirement(cfg RequirementConfig, requestURL string) (PaymentRequirement, error) {
	usdc, err := GetUSDCAddress(cfg.NetworkID)
	if err != nil {
		return PaymentRequirement{}, err
	}
	if cfg.Amount == nil || cfg.Amount.Sign() < 0 {
		return PaymentRequirement{}, fmt.Errorf("%w: amount must be a non-negative number of base units", ErrInvalidAmount)
	}

	resource := cfg.Resource
	if resource == "" {
		resource = requestURL
	}
	deadline := cfg.MaxDeadlineSeconds
	if deadline == 0 {
		deadline = DefaultMaxDeadlineSeconds
	}

	return PaymentRequirement{
		Scheme:                  SchemeExact,
		NetworkID:               cfg.NetworkID,
		MaxAmountRequired:       cfg.Amount.String(),
		Resource:                resource,
		Description:             cfg.Description,
		MimeType:                cfg.MimeType,
		PayToAddress:            cfg.PayTo,
		RequiredDeadlineSeconds: deadline,
		USDCAddress:             usdc,
		OutputSchema:            cfg.OutputSchema,
		Extra:                   cfg.Extra,
	}, nil
}
