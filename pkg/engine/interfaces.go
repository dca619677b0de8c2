package engine

import "context"

// Provider is the capability set every cloud provider implementation
// fulfills. Creation is simulated: Synthesize generates an identifier
// locally and performs no network calls.
type Provider interface {
	// Type returns the enumerated provider token.
	Type() ProviderType

	// DisplayName returns the human-readable provider name used in
	// error messages.
	DisplayName() string

	// RequiredParameters returns the minimal keys that must be present
	// in a parameter bag, in the order they are checked.
	RequiredParameters() []string

	// Validate checks that every required key is present with a
	// plausible value. The first missing key found (in declared order)
	// is reported as a MISSING_PARAMETER error.
	Validate(params Parameters) error

	// Synthesize generates a provider-prefixed VM identifier from an
	// already validated parameter bag.
	Synthesize(params Parameters) string
}

// ProviderInfo describes a registered provider for discovery surfaces.
type ProviderInfo struct {
	Type               ProviderType `json:"type"`
	DisplayName        string       `json:"display_name"`
	RequiredParameters []string     `json:"required_parameters"`
}

// ProviderRegistry resolves provider tokens to implementations. It is the
// sole extension point for adding new providers.
type ProviderRegistry interface {
	// Resolve returns the provider for the given token, or an
	// UNSUPPORTED_PROVIDER error.
	Resolve(t ProviderType) (Provider, error)

	// List returns all registered providers, sorted by type.
	List() []ProviderInfo
}

// Store is the persistence contract for VM records. Implementations must be
// safe for concurrent use; every mutating operation must leave the backing
// store consistent even if the process terminates immediately after.
type Store interface {
	// CreateVM persists a new record, enforcing id uniqueness
	// (DUPLICATE_ID on collision).
	CreateVM(ctx context.Context, vm *VMRecord) error

	// GetVM retrieves a record by id (NOT_FOUND when unknown).
	GetVM(ctx context.Context, id string) (*VMRecord, error)

	// ListVMs returns records most-recent-first with pagination.
	ListVMs(ctx context.Context, limit, offset int) ([]*VMRecord, error)

	// ListVMsByProvider returns records for one provider, optionally
	// narrowed to a status, in the same relative order as ListVMs.
	ListVMsByProvider(ctx context.Context, t ProviderType, status *VMStatus) ([]*VMRecord, error)

	// ListVMsByStatus returns records in the given status, in the same
	// relative order as ListVMs.
	ListVMsByStatus(ctx context.Context, status VMStatus) ([]*VMRecord, error)

	// UpdateVMStatus applies a permitted status transition and
	// refreshes updated_at. Fails with NOT_FOUND or INVALID_TRANSITION.
	UpdateVMStatus(ctx context.Context, id string, status VMStatus) (*VMRecord, error)

	// Summary aggregates the whole collection in a single pass.
	Summary(ctx context.Context, recentN int) (*Summary, error)

	// HealthCheck verifies the store is reachable.
	HealthCheck(ctx context.Context) error
}
