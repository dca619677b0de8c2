package providers

import "github.com/vmweaver/vmweaver/pkg/engine"

// GCPProvider simulates provisioning of Compute Engine instances.
type GCPProvider struct{}

// NewGCPProvider constructs the GCP provider.
func NewGCPProvider() engine.Provider {
	return &GCPProvider{}
}

// Type returns the gcp token.
func (p *GCPProvider) Type() engine.ProviderType {
	return engine.ProviderGCP
}

// DisplayName returns the human-readable provider name.
func (p *GCPProvider) DisplayName() string {
	return "GCP"
}

// RequiredParameters returns the keys checked by Validate, in order.
func (p *GCPProvider) RequiredParameters() []string {
	return []string{"machine_type", "zone", "project_id"}
}

// Validate reports the first missing required parameter.
func (p *GCPProvider) Validate(params engine.Parameters) error {
	return validateRequired(p.DisplayName(), p.RequiredParameters(), params)
}

// Synthesize generates a Compute Engine VM identifier.
func (p *GCPProvider) Synthesize(_ engine.Parameters) string {
	return newInstanceID("gcp-vm-")
}
