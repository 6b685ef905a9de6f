package requirements

import (
	"sort"
	"sync"
)

// Factory constructs a provider with the provided configuration.
type Factory func(Config) (Provider, error)

// Registry maintains known provider factories by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register installs a provider factory. Returns an error if the name exists.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return &ConfigurationError{Reason: "provider name is required"}
	}
	if factory == nil {
		return &ConfigurationError{Provider: name, Reason: "factory is required"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return &ConfigurationError{Provider: name, Reason: "already registered"}
	}
	r.factories[name] = factory
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Resolve constructs a provider by name.
func (r *Registry) Resolve(name string, cfg Config) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &ConfigurationError{Provider: name, Reason: "unknown provider"}
	}
	provider, err := factory(cfg)
	if err != nil {
		return nil, &ConfigurationError{Provider: name, Reason: err.Error()}
	}
	if provider == nil {
		return nil, &ConfigurationError{Provider: name, Reason: "factory returned nil"}
	}
	return provider, nil
}

// Names returns a sorted list of registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
