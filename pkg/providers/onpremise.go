package providers

import "github.com/vmweaver/vmweaver/pkg/engine"

// OnPremiseProvider simulates provisioning on self-hosted infrastructure.
type OnPremiseProvider struct{}

// NewOnPremiseProvider constructs the on-premise provider.
func NewOnPremiseProvider() engine.Provider {
	return &OnPremiseProvider{}
}

// Type returns the on_premise token.
func (p *OnPremiseProvider) Type() engine.ProviderType {
	return engine.ProviderOnPremise
}

// DisplayName returns the human-readable provider name.
func (p *OnPremiseProvider) DisplayName() string {
	return "OnPremise"
}

// RequiredParameters returns the keys checked by Validate, in order.
func (p *OnPremiseProvider) RequiredParameters() []string {
	return []string{"cpu_cores", "ram_gb", "storage_gb"}
}

// Validate reports the first missing required parameter.
func (p *OnPremiseProvider) Validate(params engine.Parameters) error {
	return validateRequired(p.DisplayName(), p.RequiredParameters(), params)
}

// Synthesize generates an on-premise VM identifier.
func (p *OnPremiseProvider) Synthesize(_ engine.Parameters) string {
	return newInstanceID("onprem-vm-")
}
