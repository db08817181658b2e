// Package xendit talks to the Xendit payment requests API. Unlike the form
// based providers, Initialize performs an outbound HTTP call and callbacks are
// JSON events authenticated by a shared token header.
package xendit

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"paygate/internal/currency"
	"paygate/internal/gateway"
	"paygate/internal/logger"
	"paygate/internal/signing"
	"paygate/internal/transaction"

	"go.uber.org/zap"
)

const (
	Name = "xendit"

	ParamAPIKey        = "api_key"
	ParamCallbackToken = "callback_token"
	ParamSuccessURL    = "success_url"
	ParamFailureURL    = "failure_url"
	ParamChannelCode   = "channel_code"
	ParamCountry       = "country"

	DefaultBaseURL = "https://api.xendit.co"
	apiVersion     = "2024-11-11"
	callbackHeader = "x-callback-token"
	defaultTimeout = 5 * time.Second
	invoiceTTL     = 24 * time.Hour
)

var ErrProviderRequest = fmt.Errorf("xendit request failed: %w", gateway.ErrTransport)

var parameterNames = []string{
	ParamAPIKey,
	ParamCallbackToken,
	ParamSuccessURL,
	ParamFailureURL,
	ParamChannelCode,
	ParamCountry,
}

type Gateway struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

func WithBaseURL(u string) Option {
	return func(g *Gateway) {
		if u != "" {
			g.baseURL = u
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(opts ...Option) *Gateway {
	g := &Gateway{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) ParameterNames() []string {
	return append([]string(nil), parameterNames...)
}

// Initialize creates a payment request and returns the provider redirect.
func (g *Gateway) Initialize(ctx context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.Request, error) {
	p, err := cfg.Values(parameterNames...)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("gateway", Name),
		zap.String("alias", cfg.Alias),
		zap.String("transaction_id", tx.ID),
		zap.Int64("amount", tx.Amount),
		zap.String("channel", p[ParamChannelCode]),
	)

	amount, err := currency.FormatMinor(tx.Amount, tx.CurrencyCode)
	if err != nil {
		return nil, err
	}

	body := paymentRequest{
		ReferenceID:   tx.ID,
		Type:          "PAY",
		Country:       p[ParamCountry],
		Currency:      tx.CurrencyCode,
		RequestAmount: json.Number(amount),
		ChannelCode:   p[ParamChannelCode],
		Metadata:      map[string]string{"item_id": tx.ItemID},
		ChannelProperties: channelProperties{
			FailureReturnURL: p[ParamFailureURL],
			SuccessReturnURL: p[ParamSuccessURL],
			ExpiresAt:        g.now().Add(invoiceTTL).UTC().Format(time.RFC3339),
		},
	}
	if tx.Description != nil {
		body.Description = *tx.Description
	}
	if tx.CustomerEmail != nil && *tx.CustomerEmail != "" {
		ref := tx.ID
		if tx.CustomerID != nil {
			ref = *tx.CustomerID
		}
		body.Customer = &customer{Type: "INDIVIDUAL", ReferenceID: ref, Email: *tx.CustomerEmail}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Error("failed to marshal payment request", zap.Error(err))
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v3/payment_requests", bytes.NewReader(jsonBody))
	if err != nil {
		log.Error("failed creating request", zap.Error(err))
		return nil, err
	}
	req.SetBasicAuth(p[ParamAPIKey], "")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-version", apiVersion)

	log.Info("sending payment request to xendit")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("xendit request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("%w: read response: %v", ErrProviderRequest, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("xendit returned non-success status",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("response", respBody),
		)
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderRequest, resp.StatusCode, respBody)
	}

	var res paymentRequestResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		log.Error("failed decoding xendit response", zap.Error(err))
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderRequest, err)
	}

	var redirectURL, paymentCode string
	for _, action := range res.Actions {
		switch action.Descriptor {
		case "VIRTUAL_ACCOUNT_NUMBER", "PAYMENT_CODE", "QR_STRING":
			if paymentCode == "" {
				paymentCode = action.Value
			}
		case "WEB_URL", "DEEPLINK_URL":
			if redirectURL == "" {
				redirectURL = action.Value
			}
		}
	}

	log.Info("xendit payment request created",
		zap.String("payment_request_id", res.PaymentRequestID),
		zap.String("status", res.Status),
	)

	fields := signing.Fields{
		{Key: "payment_request_id", Value: res.PaymentRequestID},
		{Key: "status", Value: res.Status},
	}
	if paymentCode != "" {
		fields.Set("payment_code", paymentCode)
	}
	if res.ChannelProperties.ExpiresAt != nil {
		fields.Set("expires_at", res.ChannelProperties.ExpiresAt.Format(time.RFC3339))
	}

	return &gateway.Request{URL: redirectURL, Method: http.MethodGet, Fields: fields}, nil
}

func (g *Gateway) BuildHTMLView(ctx context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.View, error) {
	req, err := g.Initialize(ctx, cfg, tx)
	if err != nil {
		return nil, err
	}
	return gateway.NewView("redirect", req), nil
}

func (g *Gateway) GetResponse(ctx context.Context, cb *gateway.Callback, cfg *gateway.Configuration) (*gateway.Response, error) {
	if err := cb.RequireMethod(http.MethodPost); err != nil {
		return nil, err
	}

	token, err := cfg.Get(ParamCallbackToken)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(zap.String("gateway", Name), zap.String("alias", cfg.Alias))
	resp := gateway.NewResponse(g.now()).RawBody(cb.Body)

	var payload webhookPayload
	if err := json.Unmarshal(cb.Body, &payload); err != nil {
		log.Warn("invalid xendit callback payload", zap.Error(err))
		return resp.Fail("Invalid callback payload"), nil
	}
	data := payload.Data
	resp.TransactionUUID = data.ReferenceID

	if data.Currency != "" {
		code, err := currency.Validate(data.Currency)
		if err != nil {
			return resp.Fail("Unknown currency code: " + data.Currency), nil
		}
		resp.CurrencyCode = code

		if data.RequestAmount != "" {
			amount, err := currency.ParseMajor(data.RequestAmount.String(), code)
			if err != nil {
				return resp.Fail("Invalid amount: " + data.RequestAmount.String()), nil
			}
			resp.SetAmount(amount)
		}
	}

	if !validToken(cb.Header.Get(callbackHeader), token) {
		log.Warn("xendit callback token mismatch", zap.String("transaction_id", resp.TransactionUUID))
		return resp.Fail("Callback token check failed"), nil
	}
	resp.Verified = true

	sc := paymentStatuses.Lookup(data.Status)
	resp.Status = sc.Status
	resp.Message = sc.Message
	if sc.Status == transaction.StatusFailed && data.FailureCode != "" {
		resp.Message = sc.Message + ": " + data.FailureCode
	}

	log.Info("xendit callback parsed",
		zap.String("transaction_id", resp.TransactionUUID),
		zap.String("event", payload.Event),
		zap.String("provider_status", data.Status),
		zap.String("status", string(resp.Status)),
	)
	return resp, nil
}

func validToken(got, expected string) bool {
	if got == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
