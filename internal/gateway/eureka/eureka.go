// Package eureka implements the Eureka financing payment page. Entry (outbound)
// and exit (callback) messages are authenticated with HMAC-SHA1 over different
// positional field templates.
package eureka

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
	Name = "eureka"

	ParamMerchantID       = "merchant_id"
	ParamMerchantSiteID   = "merchant_site_id"
	ParamSecretKey        = "secret_key"
	ParamPaymentOptionRef = "payment_option_ref"
	ParamPaymentURL       = "payment_url"
	ParamCountry          = "country"
	ParamHomeURL          = "home_url"
	ParamBackURL          = "back_url"
	ParamReturnURL        = "return_url"
	ParamNotifyURL        = "notify_url"

	version    = "3"
	dateLayout = "20060102"
	hmacField  = "hmac"
)

// HMACType selects which template covers a message.
type HMACType string

const (
	HMACEntry HMACType = "entry"
	HMACExit  HMACType = "exit"
)

var parameterNames = []string{
	ParamMerchantID,
	ParamMerchantSiteID,
	ParamSecretKey,
	ParamPaymentOptionRef,
	ParamPaymentURL,
	ParamCountry,
	ParamHomeURL,
	ParamBackURL,
	ParamReturnURL,
	ParamNotifyURL,
}

var templates = map[HMACType]signing.Template{
	HMACEntry: signing.NewTemplate(
		"version",
		"merchantID",
		"merchantSiteID",
		"paymentOptionRef",
		"orderRef",
		"?freeText",
		"decimalPosition",
		"currency",
		"country",
		"?invoiceID",
		"customerRef",
		"date",
		"amount",
		"?orderRowsAmount",
		"?orderFeesAmount",
		"?orderDiscountAmount",
		"?orderShippingCost",
		"?allowCardStorage",
		"?passwordRequired",
		"?merchantAuthenticateUrl",
		"storedCardID{x}",
		"storedCardLabel{x}",
		"merchantHomeUrl",
		"merchantBackUrl",
		"merchantReturnUrl",
		"merchantNotifyUrl",
	),
	HMACExit: signing.NewTemplate(
		"version",
		"merchantID",
		"merchantSiteID",
		"paymentOptionRef",
		"orderRef",
		"?freeText",
		"decimalPosition",
		"currency",
		"country",
		"?invoiceID",
		"customerRef",
		"date",
		"amount",
		"returnCode",
		"?merchantAccountRef",
		"scheduleDate{x}",
		"scheduleAmount{x}",
		"?storedCardID",
		"?storedCardLabel",
	),
}

// Signer returns the signer for the given direction.
func Signer(t HMACType) signing.Signer {
	return signing.Signer{
		Canonicalize: templates[t].Canonicalize,
		Hash:         signing.HMACSHA1,
	}
}

type Gateway struct {
	now func() time.Time
}

func NewGateway(now func() time.Time) *Gateway {
	if now == nil {
		now = time.Now
	}
	return &Gateway{now: now}
}

func (g *Gateway) ParameterNames() []string {
	return append([]string(nil), parameterNames...)
}

func (g *Gateway) Initialize(_ context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.Request, error) {
	p, err := cfg.Values(parameterNames...)
	if err != nil {
		return nil, err
	}

	digits, err := currency.Digits(tx.CurrencyCode)
	if err != nil {
		return nil, err
	}

	customerRef := tx.ID
	if tx.CustomerID != nil && *tx.CustomerID != "" {
		customerRef = *tx.CustomerID
	}

	fields := signing.Fields{
		{Key: "version", Value: version},
		{Key: "merchantID", Value: p[ParamMerchantID]},
		{Key: "merchantSiteID", Value: p[ParamMerchantSiteID]},
		{Key: "paymentOptionRef", Value: p[ParamPaymentOptionRef]},
		{Key: "orderRef", Value: tx.ID},
		{Key: "freeText", Value: tx.ItemID},
		{Key: "decimalPosition", Value: strconv.Itoa(digits)},
		{Key: "currency", Value: tx.CurrencyCode},
		{Key: "country", Value: p[ParamCountry]},
		{Key: "customerRef", Value: customerRef},
		{Key: "date", Value: g.now().Format(dateLayout)},
		{Key: "amount", Value: strconv.FormatInt(tx.Amount, 10)},
		{Key: "merchantHomeUrl", Value: p[ParamHomeURL]},
		{Key: "merchantBackUrl", Value: p[ParamBackURL]},
		{Key: "merchantReturnUrl", Value: p[ParamReturnURL]},
		{Key: "merchantNotifyUrl", Value: p[ParamNotifyURL]},
	}

	mac, err := Signer(HMACEntry).Sign(fields, p[ParamSecretKey])
	if err != nil {
		return nil, err
	}
	fields.Set(hmacField, mac)

	return &gateway.Request{URL: p[ParamPaymentURL], Method: http.MethodPost, Fields: fields}, nil
}

func (g *Gateway) BuildHTMLView(ctx context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.View, error) {
	req, err := g.Initialize(ctx, cfg, tx)
	if err != nil {
		return nil, err
	}
	return gateway.NewView("eureka", req), nil
}

func (g *Gateway) GetResponse(ctx context.Context, cb *gateway.Callback, cfg *gateway.Configuration) (*gateway.Response, error) {
	if err := cb.RequireMethod(http.MethodPost, http.MethodGet); err != nil {
		return nil, err
	}

	secret, err := cfg.Get(ParamSecretKey)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(zap.String("gateway", Name), zap.String("alias", cfg.Alias))
	params := cb.Params()
	resp := gateway.NewResponse(g.now()).RawValues(params)

	var fields signing.Fields
	for key := range params {
		fields = append(fields, signing.Field{Key: key, Value: params.Get(key)})
	}
	resp.TransactionUUID = fields.Value("orderRef")

	if v := fields.Value("amount"); v != "" {
		amount, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return resp.Fail("Invalid amount: " + v), nil
		}
		resp.SetAmount(amount)
	}
	if v := fields.Value("currency"); v != "" {
		code, err := currency.Validate(v)
		if err != nil {
			return resp.Fail("Unknown currency code: " + v), nil
		}
		resp.CurrencyCode = code
	}

	if !Signer(HMACExit).VerifyFields(fields, secret, fields.Value(hmacField)) {
		log.Warn("eureka hmac mismatch", zap.String("transaction_id", resp.TransactionUUID))
		return resp.Fail("HMAC check failed"), nil
	}
	resp.Verified = true

	code := fields.Value("returnCode")
	sc := returnCodes.Lookup(code)
	resp.Status = sc.Status
	resp.Message = sc.Message

	log.Info("eureka callback parsed",
		zap.String("transaction_id", resp.TransactionUUID),
		zap.String("return_code", code),
		zap.String("status", string(resp.Status)),
	)
	return resp, nil
}
