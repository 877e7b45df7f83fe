package repositories

import (
	"fmt"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	domainRepos "github.com/rios0rios0/depbot/internal/domain/repositories"
)

// ProviderFactory builds a provider for one configured forge host.
type ProviderFactory func(config entities.ProviderConfig) domainRepos.ProviderRepository

// ProviderRegistry manages all registered Git provider implementations.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register adds a provider factory under the given type (e.g. "github").
func (r *ProviderRegistry) Register(providerType string, factory ProviderFactory) {
	r.providers[providerType] = factory
}

// Get returns a provider instance for the given configuration.
func (r *ProviderRegistry) Get(config entities.ProviderConfig) (domainRepos.ProviderRepository, error) {
	factory, ok := r.providers[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownProvider, config.Type)
	}
	return factory(config), nil
}

// ForHost resolves the forge serving host from the settings, then builds it.
func (r *ProviderRegistry) ForHost(
	settings *entities.Settings,
	host string,
) (domainRepos.ProviderRepository, entities.ProviderConfig, error) {
	config, ok := settings.Provider(host)
	if !ok {
		return nil, config, fmt.Errorf("%w: no provider configured for host %q", entities.ErrUnknownProvider, host)
	}
	provider, err := r.Get(config)
	if err != nil {
		return nil, config, err
	}
	return provider, config, nil
}

// Names returns the list of registered provider types.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
