package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lgdlong/ttt/internal/logger"
)

// Registry holds every configured provider and resolves logical names
// to instances. Built once at startup; read-only afterwards.
type Registry struct {
	providers   map[string]Provider
	defaultName string
	logger      logger.Logger
}

// NewRegistry wires up a registry from already-constructed providers.
// Fails with ErrNoProviders when the map is empty. When defaultName is
// absent from the map, the first name in sorted order becomes default.
func NewRegistry(providers map[string]Provider, defaultName string, log logger.Logger) (*Registry, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEYS or OPENAI_API_KEYS", ErrNoProviders)
	}

	// Match the same case folding Resolve applies to lookups.
	defaultName = strings.ToLower(defaultName)
	if _, ok := providers[defaultName]; !ok {
		names := sortedNames(providers)
		defaultName = names[0]
	}

	return &Registry{
		providers:   providers,
		defaultName: defaultName,
		logger:      log,
	}, nil
}

// Resolve returns the provider for name, or the default when name is
// empty. Unknown non-empty names fail with ErrUnknownProvider.
func (r *Registry) Resolve(name string) (Provider, error) {
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			ErrUnknownProvider, name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// Names returns the configured provider names in sorted order.
func (r *Registry) Names() []string {
	return sortedNames(r.providers)
}

// DefaultName returns the name Resolve falls back to.
func (r *Registry) DefaultName() string { return r.defaultName }

// Shutdown closes every provider. An individual close failure is logged
// and does not stop the others.
func (r *Registry) Shutdown(ctx context.Context) {
	for name, p := range r.providers {
		if err := p.Close(); err != nil {
			r.logger.Warn(ctx, "close provider %s: %v", name, err)
		}
	}
}

func sortedNames(providers map[string]Provider) []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
