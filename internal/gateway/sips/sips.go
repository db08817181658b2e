// Package sips implements the Sips 2.0 POST interface. The outbound Data field
// and the callback Data field are both "key=value|key=value" strings sealed
// with the merchant secret.
package sips

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"paygate/internal/currency"
	"paygate/internal/gateway"
	"paygate/internal/logger"
	"paygate/internal/signing"
	"paygate/internal/transaction"

	"go.uber.org/zap"
)

const (
	NameSeal = "sips_seal"
	NameHMAC = "sips_hmac"

	ParamMerchantID           = "merchant_id"
	ParamSecretKey            = "secret_key"
	ParamKeyVersion           = "key_version"
	ParamInterfaceVersion     = "interface_version"
	ParamPaymentURL           = "payment_url"
	ParamNormalReturnURL      = "normal_return_url"
	ParamAutomaticResponseURL = "automatic_response_url"

	holderAuthentFailure = "FAILURE"
	sealCheckFailed      = "Seal check failed"
)

var parameterNames = []string{
	ParamMerchantID,
	ParamSecretKey,
	ParamKeyVersion,
	ParamInterfaceVersion,
	ParamPaymentURL,
	ParamNormalReturnURL,
	ParamAutomaticResponseURL,
}

type Gateway struct {
	name          string
	sealAlgorithm string
	signer        signing.Signer
	now           func() time.Time
}

type Option func(*Gateway)

// WithClock overrides the time source used to stamp responses.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// NewSealGateway seals with sha256(Data + secret).
func NewSealGateway(opts ...Option) *Gateway {
	return newGateway(NameSeal, "SHA-256", signing.SHA256, opts)
}

// NewHMACGateway seals with HMAC-SHA-256(Data, secret).
func NewHMACGateway(opts ...Option) *Gateway {
	return newGateway(NameHMAC, "HMAC-SHA-256", signing.HMACSHA256, opts)
}

func newGateway(name, algorithm string, hash signing.HashFunc, opts []Option) *Gateway {
	g := &Gateway{
		name:          name,
		sealAlgorithm: algorithm,
		signer: signing.Signer{
			Canonicalize: signing.Delimited("|"),
			Hash:         hash,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Name() string {
	return g.name
}

func (g *Gateway) ParameterNames() []string {
	return append([]string(nil), parameterNames...)
}

// Data returns the ordered fields sealed in the outbound Data parameter.
func (g *Gateway) Data(cfg *gateway.Configuration, tx *transaction.Transaction) (signing.Fields, error) {
	p, err := cfg.Values(ParamMerchantID, ParamKeyVersion, ParamNormalReturnURL, ParamAutomaticResponseURL)
	if err != nil {
		return nil, err
	}

	numeric, err := currency.Numeric(tx.CurrencyCode)
	if err != nil {
		return nil, err
	}

	data := signing.Fields{
		{Key: "amount", Value: strconv.FormatInt(tx.Amount, 10)},
		{Key: "currencyCode", Value: numeric},
		{Key: "merchantId", Value: p[ParamMerchantID]},
		{Key: "normalReturnUrl", Value: p[ParamNormalReturnURL]},
		{Key: "automaticResponseUrl", Value: p[ParamAutomaticResponseURL]},
		{Key: "transactionReference", Value: tx.ID},
		{Key: "orderId", Value: tx.ID},
		{Key: "keyVersion", Value: p[ParamKeyVersion]},
	}
	if tx.CustomerEmail != nil && *tx.CustomerEmail != "" {
		data.Set("customerEmail", *tx.CustomerEmail)
	}
	return data, nil
}

func (g *Gateway) Initialize(_ context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.Request, error) {
	p, err := cfg.Values(ParamSecretKey, ParamInterfaceVersion, ParamPaymentURL)
	if err != nil {
		return nil, err
	}

	fields, err := g.Data(cfg, tx)
	if err != nil {
		return nil, err
	}

	data, err := g.signer.Canonical(fields)
	if err != nil {
		return nil, err
	}
	seal, err := g.signer.SignString(data, p[ParamSecretKey])
	if err != nil {
		return nil, err
	}

	return &gateway.Request{
		URL:    p[ParamPaymentURL],
		Method: http.MethodPost,
		Fields: signing.Fields{
			{Key: "Data", Value: data},
			{Key: "InterfaceVersion", Value: p[ParamInterfaceVersion]},
			{Key: "SealAlgorithm", Value: g.sealAlgorithm},
			{Key: "Seal", Value: seal},
		},
	}, nil
}

func (g *Gateway) BuildHTMLView(ctx context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.View, error) {
	req, err := g.Initialize(ctx, cfg, tx)
	if err != nil {
		return nil, err
	}
	return gateway.NewView("sips", req), nil
}

func (g *Gateway) GetResponse(ctx context.Context, cb *gateway.Callback, cfg *gateway.Configuration) (*gateway.Response, error) {
	if err := cb.RequireMethod(http.MethodPost, http.MethodGet); err != nil {
		return nil, err
	}

	secret, err := cfg.Get(ParamSecretKey)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(zap.String("gateway", g.name), zap.String("alias", cfg.Alias))
	resp := gateway.NewResponse(g.now()).RawValues(cb.Params())

	raw := cb.Value("Data")
	if raw == "" {
		return resp.Fail("Missing Data parameter"), nil
	}

	data := signing.ParseDelimited(raw, "|")
	resp.TransactionUUID = data.Value("orderId")
	if resp.TransactionUUID == "" {
		resp.TransactionUUID = data.Value("transactionReference")
	}

	if v := data.Value("amount"); v != "" {
		amount, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return resp.Fail("Invalid amount: " + v), nil
		}
		resp.SetAmount(amount)
	}
	if v := data.Value("currencyCode"); v != "" {
		alpha, err := currency.Alpha(v)
		if err != nil {
			return resp.Fail("Unknown currency code: " + v), nil
		}
		resp.CurrencyCode = alpha
	}

	// The literal received Data string is hashed, never a re-serialization.
	if !g.signer.Verify(raw, secret, cb.Value("Seal")) {
		log.Warn("sips seal mismatch", zap.String("transaction_id", resp.TransactionUUID))
		return resp.Fail(sealCheckFailed), nil
	}
	resp.Verified = true

	code := data.Value("responseCode")
	if code == responseCodeApproved && data.Value("holderAuthentStatus") == holderAuthentFailure {
		return resp.Fail("3-D Secure authentication failed"), nil
	}

	sc := responseCodes.Lookup(code)
	resp.Status = sc.Status
	resp.Message = sc.Message

	log.Info("sips callback parsed",
		zap.String("transaction_id", resp.TransactionUUID),
		zap.String("response_code", code),
		zap.String("status", string(resp.Status)),
	)
	return resp, nil
}
