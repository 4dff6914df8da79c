package x402

import "fmt"

// Network identifiers understood by the gate. They are bare EIP-155 chain ids.
const (
	NetworkBase        = "8453"
	NetworkBaseSepolia = "84532"
)

// ChainConfig holds configuration for a specific blockchain.
type ChainConfig struct {
	// NetworkID is the chain id as used in PaymentRequirement.NetworkID.
	NetworkID string

	// Name is a display name for the chain.
	Name string

	// USDCAddress is the official Circle USDC contract address.
	USDCAddress string

	// Decimals is the number of decimal places for USDC (always 6).
	Decimals uint8

	// EIP3009Name is the EIP-712 domain "name" of the USDC contract.
	EIP3009Name string

	// EIP3009Version is the EIP-712 domain "version" of the USDC contract.
	EIP3009Version string

	// Testnet reports whether the chain is a test network.
	Testnet bool
}

var (
	// BaseMainnet is the configuration for Base mainnet.
	BaseMainnet = ChainConfig{
		NetworkID:      NetworkBase,
		Name:           "Base",
		USDCAddress:    "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Decimals:       USDCDecimals,
		EIP3009Name:    "USD Coin",
		EIP3009Version: "2",
	}

	// BaseSepolia is the configuration for the Base Sepolia testnet.
	BaseSepolia = ChainConfig{
		NetworkID:      NetworkBaseSepolia,
		Name:           "Base Sepolia",
		USDCAddress:    "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		Decimals:       USDCDecimals,
		EIP3009Name:    "USDC",
		EIP3009Version: "2",
		Testnet:        true,
	}
)

var chainConfigByNetwork = map[string]ChainConfig{
	NetworkBase:        BaseMainnet,
	NetworkBaseSepolia: BaseSepolia,
}

// GetChainConfig returns the chain configuration for a network id.
// Unknown ids return an error wrapping ErrUnsupportedNetwork.
func GetChainConfig(networkID string) (ChainConfig, error) {
	config, ok := chainConfigByNetwork[networkID]
	if !ok {
		return ChainConfig{}, fmt.Errorf("%w: %q", ErrUnsupportedNetwork, networkID)
	}
	return config, nil
}

// GetUSDCAddress returns the USDC contract address deployed on networkID.
func GetUSDCAddress(networkID string) (string, error) {
	config, err := GetChainConfig(networkID)
	if err != nil {
		return "", err
	}
	return config.USDCAddress, nil
}

// DefaultNetwork picks Base Sepolia for testnet deployments and Base otherwise.
func DefaultNetwork(testnet bool) string {
	if testnet {
		return NetworkBaseSepolia
	}
	return NetworkBase
}

// SupportedChains returns the configurations of every supported network.
func SupportedChains() []ChainConfig {
	return []ChainConfig{BaseMainnet, BaseSepolia}
}
