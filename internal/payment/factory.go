package payment

import (
	"context"
	"fmt"

	"paygate/internal/gateway"
)

type ConfigurationFinder interface {
	FindByAlias(ctx context.Context, alias string) (*gateway.Configuration, error)
}

// Factory resolves an alias to a ready Context: configuration, then gateway,
// then the enabled flag and the parameter contract.
type Factory struct {
	registry *gateway.Registry
	configs  ConfigurationFinder
	manager  TransactionManager
	opts     options
}

func NewFactory(registry *gateway.Registry, configs ConfigurationFinder, manager TransactionManager, opts ...Option) *Factory {
	return &Factory{
		registry: registry,
		configs:  configs,
		manager:  manager,
		opts:     newOptions(opts),
	}
}

func (f *Factory) Registry() *gateway.Registry {
	return f.registry
}

func (f *Factory) Context(ctx context.Context, alias string) (*Context, error) {
	cfg, err := f.configs.FindByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}

	g, err := f.registry.Get(cfg.GatewayName)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: %s", gateway.ErrConfigurationDisabled, alias)
	}
	if err := cfg.Validate(g); err != nil {
		return nil, err
	}

	return newContext(cfg, g, f.manager, f.opts), nil
}
