package http

import (
	"encoding/json"
	"html/template"
	"io"

	"github.com/nacorid/x402-gate"
)

// PaywallData is the state exposed to the paywall page as window.x402.
type PaywallData struct {
	// Amount is the price in dollars.
	Amount json.Number `json:"amount"`

	PaymentDetails x402.PaymentRequirement `json:"paymentDetails"`
	Testnet        bool                    `json:"testnet"`
	CurrentURL     string                  `json:"currentUrl"`
	Config         PaywallConfig           `json:"config"`
}

// PaywallConfig carries the token table to the page script.
type PaywallConfig struct {
	ChainConfig map[string]PaywallChain `json:"chainConfig"`
}

// PaywallChain describes the USDC deployment on one chain.
type PaywallChain struct {
	USDCAddress string `json:"usdcAddress"`
	USDCName    string `json:"usdcName"`
}

// PaywallRenderer writes the HTML served to browsers on a 402.
type PaywallRenderer interface {
	RenderPaywall(w io.Writer, data PaywallData) error
}

// StaticPaywall serves fixed HTML regardless of the request.
type StaticPaywall string

// RenderPaywall implements PaywallRenderer.
func (p StaticPaywall) RenderPaywall(w io.Writer, _ PaywallData) error {
	_, err := io.WriteString(w, string(p))
	return err
}

// DefaultPaywall renders a minimal page with the payment state injected as window.x402.
type DefaultPaywall struct{}

// RenderPaywall implements PaywallRenderer.
func (DefaultPaywall) RenderPaywall(w io.Writer, data PaywallData) error {
	return defaultPaywallTemplate.Execute(w, data)
}

func newPaywallConfig() PaywallConfig {
	chains := make(map[string]PaywallChain)
	for _, chain := range x402.SupportedChains() {
		chains[chain.NetworkID] = PaywallChain{
			USDCAddress: chain.USDCAddress,
			USDCName:    "USDC",
		}
	}
	return PaywallConfig{ChainConfig: chains}
}

var defaultPaywallTemplate = template.Must(template.New("paywall").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Payment Required</title>
<script>
  window.x402 = {{.}};
</script>
<style>
  body { font-family: system-ui, sans-serif; max-width: 32rem; margin: 4rem auto; padding: 0 1rem; color: #111; }
  .amount { font-size: 2rem; font-weight: 600; }
  code { word-break: break-all; }
</style>
</head>
<body>
<main>
  <h1>Payment Required</h1>
  {{with .PaymentDetails.Description}}<p>{{.}}</p>{{end}}
  <p class="amount">${{.Amount}} USDC</p>
  <p>Network: {{.PaymentDetails.NetworkID}}{{if .Testnet}} (testnet){{end}}</p>
  <p>Pay to: <code>{{.PaymentDetails.PayToAddress}}</code></p>
  <p>Retry <a href="{{.CurrentURL}}">this page</a> with a signed X-PAYMENT header to continue.</p>
</main>
</body>
</html>
`))
