package providers

import "github.com/vmweaver/vmweaver/pkg/engine"

// AzureProvider simulates provisioning of Azure Virtual Machines.
type AzureProvider struct{}

// NewAzureProvider constructs the Azure provider.
func NewAzureProvider() engine.Provider {
	return &AzureProvider{}
}

// Type returns the azure token.
func (p *AzureProvider) Type() engine.ProviderType {
	return engine.ProviderAzure
}

// DisplayName returns the human-readable provider name.
func (p *AzureProvider) DisplayName() string {
	return "Azure"
}

// RequiredParameters returns the keys checked by Validate, in order.
func (p *AzureProvider) RequiredParameters() []string {
	return []string{"vm_size", "resource_group", "location"}
}

// Validate reports the first missing required parameter.
func (p *AzureProvider) Validate(params engine.Parameters) error {
	return validateRequired(p.DisplayName(), p.RequiredParameters(), params)
}

// Synthesize generates an Azure VM identifier.
func (p *AzureProvider) Synthesize(_ engine.Parameters) string {
	return newInstanceID("az-vm-")
}
