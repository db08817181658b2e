package gateway

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps gateway names to implementations. Entries are added
// explicitly at startup.
type Registry struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
}

func NewRegistry() *Registry {
	return &Registry{gateways: make(map[string]Gateway)}
}

func (r *Registry) Register(name string, g Gateway) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.gateways[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateGateway, name)
	}
	r.gateways[name] = g
	return nil
}

func (r *Registry) Get(name string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedGateway, name)
	}
	return g, nil
}

// Names returns registered gateway names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate resolves the gateway bound to cfg and checks its parameters.
func (r *Registry) Validate(cfg *Configuration) (Gateway, error) {
	g, err := r.Get(cfg.GatewayName)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}
