package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository interface {
	Save(ctx context.Context, t *Transaction) error
	Retrieve(ctx context.Context, id string) (*Transaction, error)
	UpdateStatus(ctx context.Context, t *Transaction, previous Status) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, t *Transaction) error {
	const q = `
	INSERT INTO transactions (
		id,
		gateway_configuration_alias,
		item_id,
		customer_id,
		customer_email,
		description,
		amount,
		currency_code,
		status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at, updated_at;
	`

	err := r.db.QueryRowContext(ctx, q,
		t.ID,
		t.GatewayConfigurationAlias,
		t.ItemID,
		t.CustomerID,
		t.CustomerEmail,
		t.Description,
		t.Amount,
		t.CurrencyCode,
		string(t.Status),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save transaction %s: %w", t.ID, err)
	}
	return nil
}

func (r *repository) Retrieve(ctx context.Context, id string) (*Transaction, error) {
	const q = `
	SELECT id, gateway_configuration_alias, item_id, customer_id, customer_email,
		description, amount, currency_code, status, created_at, updated_at
	FROM transactions
	WHERE id = $1;
	`

	var (
		t      Transaction
		status string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.GatewayConfigurationAlias, &t.ItemID, &t.CustomerID, &t.CustomerEmail,
		&t.Description, &t.Amount, &t.CurrencyCode, &status, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve transaction %s: %w", id, err)
	}

	t.Status = Status(status)
	return &t, nil
}

// UpdateStatus commits t.Status only if the stored row still holds previous.
func (r *repository) UpdateStatus(ctx context.Context, t *Transaction, previous Status) error {
	const q = `
	UPDATE transactions
	SET status = $1, updated_at = NOW()
	WHERE id = $2 AND status = $3
	RETURNING updated_at;
	`

	err := r.db.QueryRowContext(ctx, q, string(t.Status), t.ID, string(previous)).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s expected status %s", ErrConcurrentUpdate, t.ID, previous)
	}
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return nil
}
