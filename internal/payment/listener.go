package payment

import (
	"context"

	"paygate/internal/logger"
	"paygate/internal/transaction"

	"go.uber.org/zap"
)

// Listener receives transaction lifecycle events. TransactionCreated errors
// abort creation; TransactionUpdated errors are logged because the new status
// is already committed.
type Listener interface {
	TransactionCreated(ctx context.Context, tx *transaction.Transaction) error
	TransactionUpdated(ctx context.Context, result *Result) error
}

// PersistingListener stores new transactions through the manager.
type PersistingListener struct {
	Manager TransactionManager
}

func (l PersistingListener) TransactionCreated(ctx context.Context, tx *transaction.Transaction) error {
	return l.Manager.Save(ctx, tx)
}

func (l PersistingListener) TransactionUpdated(context.Context, *Result) error {
	return nil
}

type LoggingListener struct{}

func (LoggingListener) TransactionCreated(ctx context.Context, tx *transaction.Transaction) error {
	logger.FromCtx(ctx).Info("event transaction.created",
		zap.String("transaction_id", tx.ID),
		zap.String("alias", tx.GatewayConfigurationAlias),
		zap.String("item_id", tx.ItemID),
	)
	return nil
}

func (LoggingListener) TransactionUpdated(ctx context.Context, result *Result) error {
	logger.FromCtx(ctx).Info("event transaction.updated",
		zap.String("transaction_id", result.Transaction.ID),
		zap.String("previous", string(result.Previous)),
		zap.String("status", string(result.Transaction.Status)),
		zap.String("message", result.Response.Message),
	)
	return nil
}
