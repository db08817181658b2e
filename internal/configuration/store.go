// Package configuration loads gateway configurations by alias from PostgreSQL
// or from a YAML file.
package configuration

import (
	"context"
	"errors"
	"fmt"

	"paygate/internal/gateway"
)

var ErrDuplicateAlias = errors.New("duplicate configuration alias")

type Store interface {
	FindByAlias(ctx context.Context, alias string) (*gateway.Configuration, error)
	List(ctx context.Context) ([]*gateway.Configuration, error)
}

// ValidateAll checks every configuration against the gateway it names and
// reports all failures together.
func ValidateAll(r *gateway.Registry, cfgs []*gateway.Configuration) error {
	var errs []error
	for _, cfg := range cfgs {
		if _, err := r.Validate(cfg); err != nil {
			errs = append(errs, fmt.Errorf("configuration %q: %w", cfg.Alias, err))
		}
	}
	return errors.Join(errs...)
}

func notFound(alias string) error {
	return fmt.Errorf("%w: %s", gateway.ErrNoConfigurationFound, alias)
}
