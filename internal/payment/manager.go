package payment

import (
	"context"

	"paygate/internal/transaction"
)

// TransactionManager is the persistence boundary consumed by Context.
// transaction.Repository and transaction.MemoryRepository both satisfy it.
type TransactionManager interface {
	Save(ctx context.Context, t *transaction.Transaction) error
	Retrieve(ctx context.Context, id string) (*transaction.Transaction, error)
	// UpdateStatus commits t.Status only if the stored status is still previous.
	UpdateStatus(ctx context.Context, t *transaction.Transaction, previous transaction.Status) error
}
