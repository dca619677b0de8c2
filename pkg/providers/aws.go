package providers

import "github.com/vmweaver/vmweaver/pkg/engine"

// AWSProvider simulates provisioning of EC2 instances.
type AWSProvider struct{}

// NewAWSProvider constructs the AWS provider.
func NewAWSProvider() engine.Provider {
	return &AWSProvider{}
}

// Type returns the aws token.
func (p *AWSProvider) Type() engine.ProviderType {
	return engine.ProviderAWS
}

// DisplayName returns the human-readable provider name.
func (p *AWSProvider) DisplayName() string {
	return "AWS"
}

// RequiredParameters returns the keys checked by Validate, in order.
func (p *AWSProvider) RequiredParameters() []string {
	return []string{"instance_type", "region", "vpc", "ami"}
}

// Validate reports the first missing required parameter.
func (p *AWSProvider) Validate(params engine.Parameters) error {
	return validateRequired(p.DisplayName(), p.RequiredParameters(), params)
}

// Synthesize generates an EC2-style instance identifier.
func (p *AWSProvider) Synthesize(_ engine.Parameters) string {
	return newInstanceID("i-")
}
