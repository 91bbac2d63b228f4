package search

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrProviderNotFound is returned when looking up an unregistered provider.
var ErrProviderNotFound = errors.New("search: provider not found")

// Registry is the name-indexed set of search providers, built once at
// startup. Registration problems are programming errors and panic.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider. It panics on nil providers, empty names, and
// duplicate registrations.
func (r *Registry) Register(p Provider) {
	if p == nil {
		panic("search: cannot register nil provider")
	}
	name := p.Name()
	if name == "" {
		panic("search: cannot register provider with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		panic(fmt.Sprintf("search: provider %q already registered", name))
	}
	r.providers[name] = p
	r.order = append(r.order, name)
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return p, nil
}

// MustGet is Get for callers that know the provider exists.
func (r *Registry) MustGet(name string) Provider {
	p, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Has reports whether a provider is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}

// List returns the registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the named provider when it is registered and enabled,
// falling back to the first enabled provider in registration order, and
// finally to the no-op provider.
func (r *Registry) Resolve(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.providers[name]; ok && p.Enabled() {
		return p
	}
	for _, registered := range r.order {
		if p := r.providers[registered]; p.Enabled() {
			return p
		}
	}
	return Noop{}
}
