// Package webhook exposes payment contexts over HTTP: provider callbacks,
// transaction creation and gateway introspection.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"paygate/internal/currency"
	"paygate/internal/gateway"
	"paygate/internal/lock"
	"paygate/internal/logger"
	"paygate/internal/metrics"
	"paygate/internal/payment"
	"paygate/internal/transaction"

	"go.uber.org/zap"
)

const maxCreateBody = 64 << 10

type PaymentContext interface {
	Gateway() gateway.Gateway
	CreateTransaction(ctx context.Context, params transaction.Params) (*transaction.Transaction, error)
	BuildHTMLView(ctx context.Context, tx *transaction.Transaction) (*gateway.View, error)
	HandleGatewayCallback(ctx context.Context, cb *gateway.Callback) (*payment.Result, error)
}

type ContextResolver interface {
	Context(ctx context.Context, alias string) (PaymentContext, error)
}

type factoryResolver struct {
	f *payment.Factory
}

func (r factoryResolver) Context(ctx context.Context, alias string) (PaymentContext, error) {
	pc, err := r.f.Context(ctx, alias)
	if err != nil {
		return nil, err
	}
	return pc, nil
}

// FromFactory adapts a payment.Factory to ContextResolver.
func FromFactory(f *payment.Factory) ContextResolver {
	return factoryResolver{f: f}
}

// CallbackBody is the canonical JSON returned for a handled callback.
type CallbackBody struct {
	TransactionUUID string             `json:"transaction_uuid"`
	Status          transaction.Status `json:"status"`
	Message         string             `json:"message"`
	Raw             json.RawMessage    `json:"raw"`
}

type CreateBody struct {
	Transaction *transaction.Transaction `json:"transaction"`
	View        *gateway.View            `json:"view"`
}

type errorBody struct {
	Error string `json:"error"`
}

type Handler struct {
	resolver ContextResolver
	metrics  *metrics.Callbacks
}

func NewHandler(resolver ContextResolver) *Handler {
	return &Handler{resolver: resolver}
}

// WithMetrics records every callback outcome into m.
func (h *Handler) WithMetrics(m *metrics.Callbacks) *Handler {
	h.metrics = m
	return h
}

func (h *Handler) observe(alias string, outcome metrics.Outcome, timer *metrics.Timer) {
	if h.metrics != nil {
		h.metrics.Observe(alias, outcome, timer.Duration())
	}
}

func outcomeOf(result *payment.Result) metrics.Outcome {
	switch {
	case !result.Response.Verified:
		return metrics.OutcomeRejected
	case result.Ignored:
		return metrics.OutcomeIgnored
	}
	return metrics.OutcomeChanged
}

// Callback handles GET and POST /payment-gateway/{alias}/callback.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	timer := metrics.StartTimer()
	alias := r.PathValue("alias")
	ctx := logger.WithFields(r.Context(), zap.String("alias", alias))
	log := logger.FromCtx(ctx)

	pc, err := h.resolver.Context(ctx, alias)
	if err != nil {
		h.observe(metrics.UnknownAlias, metrics.OutcomeError, timer)
		writeError(ctx, w, err)
		return
	}

	cb, err := gateway.CallbackFromHTTP(r)
	if err != nil {
		h.observe(alias, metrics.OutcomeError, timer)
		writeCallbackError(ctx, w, pc.Gateway(), err)
		return
	}

	result, err := pc.HandleGatewayCallback(ctx, cb)
	if err != nil {
		h.observe(alias, metrics.OutcomeError, timer)
		writeCallbackError(ctx, w, pc.Gateway(), err)
		return
	}
	h.observe(alias, outcomeOf(result), timer)

	log.Info("callback processed",
		zap.String("transaction_id", result.Transaction.ID),
		zap.String("status", string(result.Transaction.Status)),
	)

	if ack, ok := pc.Gateway().(gateway.Acknowledger); ok {
		contentType, body := ack.Acknowledge(result.Response)
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	raw := result.Response.Raw
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, CallbackBody{
		TransactionUUID: result.Transaction.ID,
		Status:          result.Transaction.Status,
		Message:         result.Message(),
		Raw:             raw,
	})
}

// CreateTransaction handles POST /payment-gateway/{alias}/transactions.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")
	ctx := logger.WithFields(r.Context(), zap.String("alias", alias))

	pc, err := h.resolver.Context(ctx, alias)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var params transaction.Params
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCreateBody)).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON payload"})
		return
	}

	tx, err := pc.CreateTransaction(ctx, params)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := pc.BuildHTMLView(ctx, tx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateBody{Transaction: tx, View: view})
}

// StatusFor maps a fatal error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, gateway.ErrNoConfigurationFound),
		errors.Is(err, gateway.ErrUndefinedGateway),
		errors.Is(err, payment.ErrNoTransactionFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrInvalidRequestMethod):
		return http.StatusMethodNotAllowed
	case errors.Is(err, gateway.ErrConfigurationDisabled):
		return http.StatusForbidden
	case errors.Is(err, payment.ErrNoTransactionID),
		errors.Is(err, gateway.ErrInvalidCallback),
		errors.Is(err, transaction.ErrMissingItemID),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, currency.ErrUnknownCurrency):
		return http.StatusBadRequest
	case errors.Is(err, transaction.ErrConcurrentUpdate),
		errors.Is(err, lock.ErrNotAcquired):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrTransport):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeCallbackError answers with the gateway's negative receipt when it
// expects one, so the provider sees a refusal in its own format.
func writeCallbackError(ctx context.Context, w http.ResponseWriter, g gateway.Gateway, err error) {
	ack, ok := g.(gateway.Acknowledger)
	if !ok {
		writeError(ctx, w, err)
		return
	}

	status := logError(ctx, err)
	contentType, body := ack.Acknowledge(nil)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func logError(ctx context.Context, err error) int {
	status := StatusFor(err)
	log := logger.FromCtx(ctx)
	if status >= http.StatusInternalServerError {
		log.Error("payment request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Warn("payment request rejected", zap.Int("status", status), zap.Error(err))
	}
	return status
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := logError(ctx, err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// configuration details stay in the logs
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
