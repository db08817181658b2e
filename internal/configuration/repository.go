package configuration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"paygate/internal/gateway"
)

// Repository is the PostgreSQL backed Store, writable by the admin tooling.
type Repository interface {
	Store
	Save(ctx context.Context, cfg *gateway.Configuration) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByAlias(ctx context.Context, alias string) (*gateway.Configuration, error) {
	const q = `
	SELECT alias, gateway_name, enabled
	FROM payment_gateway_configurations
	WHERE alias = $1;
	`

	var cfg gateway.Configuration
	err := r.db.QueryRowContext(ctx, q, alias).Scan(&cfg.Alias, &cfg.GatewayName, &cfg.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(alias)
	}
	if err != nil {
		return nil, fmt.Errorf("find configuration %s: %w", alias, err)
	}

	if err := r.loadParameters(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repository) loadParameters(ctx context.Context, cfg *gateway.Configuration) error {
	const q = `
	SELECT key, value
	FROM payment_gateway_configuration_parameters
	WHERE alias = $1
	ORDER BY position;
	`

	rows, err := r.db.QueryContext(ctx, q, cfg.Alias)
	if err != nil {
		return fmt.Errorf("load parameters of %s: %w", cfg.Alias, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan parameter of %s: %w", cfg.Alias, err)
		}
		cfg.Set(key, value)
	}
	return rows.Err()
}

func (r *repository) List(ctx context.Context) ([]*gateway.Configuration, error) {
	const q = `
	SELECT c.alias, c.gateway_name, c.enabled, p.key, p.value
	FROM payment_gateway_configurations c
	LEFT JOIN payment_gateway_configuration_parameters p ON p.alias = c.alias
	ORDER BY c.alias, p.position;
	`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	defer rows.Close()

	var (
		out     []*gateway.Configuration
		current *gateway.Configuration
	)
	for rows.Next() {
		var (
			alias, name string
			enabled     bool
			key, value  sql.NullString
		)
		if err := rows.Scan(&alias, &name, &enabled, &key, &value); err != nil {
			return nil, fmt.Errorf("scan configuration: %w", err)
		}
		if current == nil || current.Alias != alias {
			current = &gateway.Configuration{Alias: alias, GatewayName: name, Enabled: enabled}
			out = append(out, current)
		}
		if key.Valid {
			current.Set(key.String, value.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces the configuration row and its parameters in one transaction.
func (r *repository) Save(ctx context.Context, cfg *gateway.Configuration) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save configuration %s: %w", cfg.Alias, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsert = `
	INSERT INTO payment_gateway_configurations (alias, gateway_name, enabled)
	VALUES ($1, $2, $3)
	ON CONFLICT (alias) DO UPDATE
	SET gateway_name = EXCLUDED.gateway_name, enabled = EXCLUDED.enabled, updated_at = NOW();
	`
	if _, err = tx.ExecContext(ctx, upsert, cfg.Alias, cfg.GatewayName, cfg.Enabled); err != nil {
		return fmt.Errorf("save configuration %s: %w", cfg.Alias, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM payment_gateway_configuration_parameters WHERE alias = $1;`, cfg.Alias); err != nil {
		return fmt.Errorf("clear parameters of %s: %w", cfg.Alias, err)
	}

	const insert = `
	INSERT INTO payment_gateway_configuration_parameters (alias, position, key, value)
	VALUES ($1, $2, $3, $4);
	`
	for i, p := range cfg.Parameters {
		if _, err = tx.ExecContext(ctx, insert, cfg.Alias, i, p.Key, p.Value); err != nil {
			return fmt.Errorf("save parameter %s of %s: %w", p.Key, cfg.Alias, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit configuration %s: %w", cfg.Alias, err)
	}
	return nil
}
