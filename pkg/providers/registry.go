package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vmweaver/vmweaver/pkg/engine"
)

// Factory constructs a provider implementation. Constructors take no
// arguments; providers are stateless.
type Factory func() engine.Provider

// Registry maps provider tokens to factories. It implements
// engine.ProviderRegistry and is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[engine.ProviderType]Factory
}

// NewRegistry creates a registry populated with the built-in providers.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[engine.ProviderType]Factory),
	}

	// Built-in providers. Extending the set is a Register call plus one
	// implementation; nothing here changes.
	r.factories[engine.ProviderAWS] = NewAWSProvider
	r.factories[engine.ProviderAzure] = NewAzureProvider
	r.factories[engine.ProviderGCP] = NewGCPProvider
	r.factories[engine.ProviderOnPremise] = NewOnPremiseProvider

	return r
}

// Register adds a provider factory. Registering an already-known token
// fails; existing providers are never silently replaced.
func (r *Registry) Register(t engine.ProviderType, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[t]; exists {
		return fmt.Errorf("provider %s already registered", t)
	}
	r.factories[t] = factory
	return nil
}

// Resolve returns a provider instance for the given token.
func (r *Registry) Resolve(t engine.ProviderType) (engine.Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[t]
	r.mu.RUnlock()

	if !ok {
		return nil, engine.NewUnsupportedProvider(t)
	}
	return factory(), nil
}

// List returns all registered providers sorted by type.
func (r *Registry) List() []engine.ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]engine.ProviderInfo, 0, len(r.factories))
	for _, factory := range r.factories {
		p := factory()
		infos = append(infos, engine.ProviderInfo{
			Type:               p.Type(),
			DisplayName:        p.DisplayName(),
			RequiredParameters: p.RequiredParameters(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Type < infos[j].Type
	})
	return infos
}
