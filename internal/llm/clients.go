package llm

import (
	"fmt"
	"sync"
)

// Clients lazily constructs one backend per provider and keeps it for the
// rest of the run. It is built once by the caller and passed explicitly to
// whatever needs a backend.
type Clients struct {
	mu       sync.Mutex
	configs  map[string]Config
	backends map[string]Backend
	factory  func(Config) (Backend, error)
}

// NewClients creates a registry over per-provider configs
func NewClients(configs map[string]Config) *Clients {
	return &Clients{
		configs:  configs,
		backends: make(map[string]Backend),
		factory:  NewBackend,
	}
}

// Get returns the cached backend for provider, constructing it on first use.
// A missing credential surfaces here, before any work is sent.
func (c *Clients) Get(provider string) (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.backends[provider]; ok {
		return b, nil
	}

	cfg, ok := c.configs[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	b, err := c.factory(cfg)
	if err != nil {
		return nil, err
	}
	c.backends[provider] = b
	return b, nil
}

// Register installs a prebuilt backend, replacing any cached one
func (c *Clients) Register(provider string, b Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backends[provider] = b
}

// Resolve looks up a model alias and returns its spec with a ready backend
func (c *Clients) Resolve(alias string) (ModelSpec, Backend, error) {
	spec, err := Lookup(alias)
	if err != nil {
		return ModelSpec{}, nil, err
	}
	b, err := c.Get(spec.Provider)
	if err != nil {
		return ModelSpec{}, nil, err
	}
	return spec, b, nil
}
