// Package payment orchestrates one gateway configuration: it creates
// transactions, builds outbound requests and settles callbacks against the
// stored transaction.
package payment

import (
	"context"
	"errors"
	"fmt"

	"paygate/internal/gateway"
	"paygate/internal/logger"
	"paygate/internal/transaction"

	"go.uber.org/zap"
)

const (
	reasonTerminal   = "transaction already in terminal state"
	reasonUnchanged  = "transaction already in this status"
	reasonUnverified = "unverified callback not applied"
)

// Result describes what a callback did to its transaction.
type Result struct {
	Transaction *transaction.Transaction
	Response    *gateway.Response
	Previous    transaction.Status
	// Changed is true when a new status was committed.
	Changed bool
	// Ignored is true when the reported status was not applied: an unverified
	// callback or an illegal move.
	Ignored bool
	Reason  string
}

// Message is the text shown for the outcome: the reason a verified callback
// was not applied, otherwise the gateway message.
func (r *Result) Message() string {
	if r.Ignored && r.Response.Verified {
		return r.Reason
	}
	return r.Response.Message
}

type Context struct {
	config  *gateway.Configuration
	gateway gateway.Gateway
	manager TransactionManager
	opts    options
}

func NewContext(cfg *gateway.Configuration, g gateway.Gateway, manager TransactionManager, opts ...Option) *Context {
	return newContext(cfg, g, manager, newOptions(opts))
}

func newContext(cfg *gateway.Configuration, g gateway.Gateway, manager TransactionManager, o options) *Context {
	return &Context{config: cfg, gateway: g, manager: manager, opts: o}
}

func (c *Context) Configuration() *gateway.Configuration {
	return c.config
}

func (c *Context) Gateway() gateway.Gateway {
	return c.gateway
}

// CreateTransaction validates params and returns a CREATED transaction bound to
// this configuration. Storing it is left to the registered listeners.
func (c *Context) CreateTransaction(ctx context.Context, params transaction.Params) (*transaction.Transaction, error) {
	tx, err := transaction.New(c.config.Alias, params)
	if err != nil {
		return nil, err
	}

	for _, l := range c.opts.listeners {
		if err := l.TransactionCreated(ctx, tx); err != nil {
			return nil, fmt.Errorf("transaction %s created: %w", tx.ID, err)
		}
	}

	c.log(ctx).Info("transaction created",
		zap.String("transaction_id", tx.ID),
		zap.Int64("amount", tx.Amount),
		zap.String("currency", tx.CurrencyCode),
	)
	return tx, nil
}

func (c *Context) Initialize(ctx context.Context, tx *transaction.Transaction) (*gateway.Request, error) {
	return c.gateway.Initialize(ctx, c.config, tx)
}

func (c *Context) BuildHTMLView(ctx context.Context, tx *transaction.Transaction) (*gateway.View, error) {
	return c.gateway.BuildHTMLView(ctx, c.config, tx)
}

// HandleGatewayCallback verifies cb, then settles the referenced transaction
// while holding its lock. A response whose amount or currency disagrees with
// the stored transaction is forced to FAILED.
func (c *Context) HandleGatewayCallback(ctx context.Context, cb *gateway.Callback) (*Result, error) {
	resp, err := c.gateway.GetResponse(ctx, cb, c.config)
	if err != nil {
		return nil, err
	}
	if resp.TransactionUUID == "" {
		return nil, fmt.Errorf("%w: configuration %s", ErrNoTransactionID, c.config.Alias)
	}

	log := c.log(ctx).With(zap.String("transaction_id", resp.TransactionUUID))

	release, err := c.opts.locker.Lock(ctx, resp.TransactionUUID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := c.manager.Retrieve(ctx, resp.TransactionUUID)
	if errors.Is(err, transaction.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoTransactionFound, resp.TransactionUUID)
	}
	if err != nil {
		return nil, err
	}
	if tx.GatewayConfigurationAlias != c.config.Alias {
		log.Warn("callback received on foreign configuration",
			zap.String("transaction_alias", tx.GatewayConfigurationAlias))
		return nil, fmt.Errorf("%w: %s", ErrNoTransactionFound, resp.TransactionUUID)
	}

	if !resp.Verified {
		log.Warn("unverified callback not applied",
			zap.String("status", string(tx.Status)),
			zap.String("message", resp.Message),
		)
	} else if ok, msg := CheckIntegrity(tx, resp); !ok {
		log.Warn("callback integrity check failed",
			zap.String("provider_status", string(resp.Status)),
			zap.String("reason", msg),
		)
		resp.Fail(msg)
	}

	result := &Result{Transaction: tx, Response: resp, Previous: tx.Status}
	if err := c.settle(ctx, result); err != nil {
		return nil, err
	}

	c.record(ctx, result)

	log.Info("callback handled",
		zap.String("previous", string(result.Previous)),
		zap.String("status", string(tx.Status)),
		zap.Bool("changed", result.Changed),
		zap.Bool("ignored", result.Ignored),
		zap.Bool("verified", resp.Verified),
	)
	return result, nil
}

func (c *Context) settle(ctx context.Context, result *Result) error {
	tx := result.Transaction
	target := result.Response.Status

	switch {
	case !result.Response.Verified:
		// a forged or unparsable callback must not settle the transaction
		result.Ignored = true
		result.Reason = reasonUnverified
		return nil
	case target == tx.Status:
		result.Reason = reasonUnchanged
		return nil
	case tx.Status.IsTerminal():
		result.Ignored = true
		result.Reason = reasonTerminal
		return nil
	}

	if err := tx.Transition(target); err != nil {
		result.Ignored = true
		result.Reason = err.Error()
		return nil
	}

	if err := c.manager.UpdateStatus(ctx, tx, result.Previous); err != nil {
		tx.Status = result.Previous
		return err
	}
	result.Changed = true

	for _, l := range c.opts.listeners {
		if err := l.TransactionUpdated(ctx, result); err != nil {
			c.log(ctx).Error("transaction listener failed",
				zap.String("transaction_id", tx.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (c *Context) record(ctx context.Context, result *Result) {
	if c.opts.callbackLog == nil {
		return
	}
	_, duplicate, err := c.opts.callbackLog.RecordCallback(ctx, c.config.Alias, result)
	if err != nil {
		c.log(ctx).Error("failed to record callback", zap.String("transaction_id", result.Transaction.ID), zap.Error(err))
		return
	}
	if duplicate {
		c.log(ctx).Info("duplicate callback delivery", zap.String("transaction_id", result.Transaction.ID))
	}
}

func (c *Context) log(ctx context.Context) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("alias", c.config.Alias),
		zap.String("gateway", c.config.GatewayName),
	)
}

// CheckIntegrity compares the amount and currency reported by a callback with
// the stored transaction. A missing amount is a mismatch; a missing currency is not.
func CheckIntegrity(tx *transaction.Transaction, resp *gateway.Response) (bool, string) {
	if resp.Amount == nil {
		return false, "Amount missing from callback"
	}
	if *resp.Amount != tx.Amount {
		return false, fmt.Sprintf("Amount mismatch: expected %d, got %d", tx.Amount, *resp.Amount)
	}
	if resp.CurrencyCode != "" && resp.CurrencyCode != tx.CurrencyCode {
		return false, fmt.Sprintf("Currency mismatch: expected %s, got %s", tx.CurrencyCode, resp.CurrencyCode)
	}
	return true, ""
}
