package configuration

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"paygate/internal/gateway"
	"paygate/internal/signing"

	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	Configurations []fileEntry `yaml:"configurations"`
}

type fileEntry struct {
	Alias      string            `yaml:"alias"`
	Gateway    string            `yaml:"gateway"`
	Enabled    *bool             `yaml:"enabled"`
	Parameters orderedParameters `yaml:"parameters"`
}

// orderedParameters keeps the mapping order written in the file.
type orderedParameters signing.Fields

func (p *orderedParameters) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: parameters must be a mapping", node.Line)
	}
	fields := make(signing.Fields, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: parameter %q must be a scalar", v.Line, k.Value)
		}
		fields.Set(k.Value, v.Value)
	}
	*p = orderedParameters(fields)
	return nil
}

// MemoryStore serves configurations held in memory, typically loaded from YAML.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]*gateway.Configuration
}

func NewMemoryStore(cfgs ...*gateway.Configuration) (*MemoryStore, error) {
	s := &MemoryStore{configs: make(map[string]*gateway.Configuration, len(cfgs))}
	for _, cfg := range cfgs {
		if err := s.Add(cfg); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemoryStore) Add(cfg *gateway.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.configs[cfg.Alias]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAlias, cfg.Alias)
	}
	s.configs[cfg.Alias] = cfg
	return nil
}

func (s *MemoryStore) FindByAlias(_ context.Context, alias string) (*gateway.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[alias]
	if !ok {
		return nil, notFound(alias)
	}
	return clone(cfg), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*gateway.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*gateway.Configuration, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, clone(cfg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out, nil
}

func clone(cfg *gateway.Configuration) *gateway.Configuration {
	c := *cfg
	c.Parameters = append(signing.Fields(nil), cfg.Parameters...)
	return &c
}

// ParseYAML decodes a configuration document. Configurations default to enabled.
func ParseYAML(r io.Reader) ([]*gateway.Configuration, error) {
	var doc fileDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode configuration file: %w", err)
	}

	out := make([]*gateway.Configuration, 0, len(doc.Configurations))
	for i, e := range doc.Configurations {
		if e.Alias == "" || e.Gateway == "" {
			return nil, fmt.Errorf("configuration #%d: alias and gateway are required", i+1)
		}
		cfg := gateway.NewConfiguration(e.Alias, e.Gateway)
		if e.Enabled != nil {
			cfg.Enabled = *e.Enabled
		}
		cfg.Parameters = signing.Fields(e.Parameters)
		out = append(out, cfg)
	}
	return out, nil
}

// LoadFile reads path into a MemoryStore.
func LoadFile(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open configuration file: %w", err)
	}
	defer f.Close()

	cfgs, err := ParseYAML(f)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(cfgs...)
}
