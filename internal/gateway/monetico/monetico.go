// Package monetico implements the Monetico (CM-CIC) payment page, version 3.0.
// Messages are authenticated with an HMAC-SHA1 MAC keyed by a value derived
// from the merchant's 40 character key.
package monetico

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"paygate/internal/currency"
	"paygate/internal/gateway"
	"paygate/internal/logger"
	"paygate/internal/signing"
	"paygate/internal/transaction"

	"go.uber.org/zap"
)

const (
	Name = "monetico"

	ParamTPE         = "tpe"
	ParamCompany     = "company"
	ParamSecretKey   = "secret_key"
	ParamPaymentURL  = "payment_url"
	ParamLanguage    = "language"
	ParamReturnURLOK = "return_url_ok"
	ParamReturnURLKO = "return_url_err"

	version       = "3.0"
	dateLayout    = "02/01/2006:15:04:05"
	maxReference  = 12
	macField      = "MAC"
	macCheckFails = "MAC check failed"
)

var parameterNames = []string{
	ParamTPE,
	ParamCompany,
	ParamSecretKey,
	ParamPaymentURL,
	ParamLanguage,
	ParamReturnURLOK,
	ParamReturnURLKO,
}

// Return URLs are posted to the payment page but are not covered by the MAC.
var outboundSigner = signing.Signer{
	Canonicalize: signing.Sorted("*", macField, "url_retour_ok", "url_retour_err"),
	Hash:         signing.HMACSHA1,
	DeriveKey:    signing.MoneticoKey,
	Encode:       signing.UpperHex,
}

var callbackSigner = signing.Signer{
	Canonicalize: signing.Sorted("*", macField),
	Hash:         signing.HMACSHA1,
	DeriveKey:    signing.MoneticoKey,
	Encode:       signing.UpperHex,
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

// Reference condenses a transaction id into the 12 alphanumeric characters
// Monetico accepts. The full id travels in texte-libre.
func Reference(id string) string {
	ref := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, id)
	if len(ref) > maxReference {
		ref = ref[:maxReference]
	}
	return ref
}

// Amount formats a minor-unit amount as Monetico expects it, e.g. "10.00EUR".
func Amount(amount int64, code string) (string, error) {
	major, err := currency.FormatMinor(amount, code)
	if err != nil {
		return "", err
	}
	return major + code, nil
}

// ParseAmount reverses Amount.
func ParseAmount(s string) (int64, string, error) {
	if len(s) < 4 {
		return 0, "", fmt.Errorf("%w: %q", currency.ErrInvalidAmount, s)
	}
	code := s[len(s)-3:]
	minor, err := currency.ParseMajor(s[:len(s)-3], code)
	if err != nil {
		return 0, "", err
	}
	return minor, code, nil
}

func orderContext(tx *transaction.Transaction) (string, error) {
	billing := map[string]string{}
	if tx.CustomerEmail != nil && *tx.CustomerEmail != "" {
		billing["email"] = *tx.CustomerEmail
	}
	b, err := json.Marshal(map[string]any{"billing": billing})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (g *Gateway) Initialize(_ context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.Request, error) {
	p, err := cfg.Values(parameterNames...)
	if err != nil {
		return nil, err
	}

	amount, err := Amount(tx.Amount, tx.CurrencyCode)
	if err != nil {
		return nil, err
	}
	contexte, err := orderContext(tx)
	if err != nil {
		return nil, err
	}

	fields := signing.Fields{
		{Key: "TPE", Value: p[ParamTPE]},
		{Key: "contexte_commande", Value: contexte},
		{Key: "date", Value: g.now().Format(dateLayout)},
		{Key: "lgue", Value: p[ParamLanguage]},
		{Key: "montant", Value: amount},
		{Key: "reference", Value: Reference(tx.ID)},
		{Key: "societe", Value: p[ParamCompany]},
		{Key: "texte-libre", Value: tx.ID},
		{Key: "url_retour_err", Value: p[ParamReturnURLKO]},
		{Key: "url_retour_ok", Value: p[ParamReturnURLOK]},
		{Key: "version", Value: version},
	}
	if tx.CustomerEmail != nil && *tx.CustomerEmail != "" {
		fields.Set("mail", *tx.CustomerEmail)
	}

	mac, err := outboundSigner.Sign(fields, p[ParamSecretKey])
	if err != nil {
		return nil, err
	}
	fields.Set(macField, mac)

	return &gateway.Request{URL: p[ParamPaymentURL], Method: http.MethodPost, Fields: fields}, nil
}

func (g *Gateway) BuildHTMLView(ctx context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.View, error) {
	req, err := g.Initialize(ctx, cfg, tx)
	if err != nil {
		return nil, err
	}
	return gateway.NewView("monetico", req), nil
}

func (g *Gateway) GetResponse(ctx context.Context, cb *gateway.Callback, cfg *gateway.Configuration) (*gateway.Response, error) {
	if err := cb.RequireMethod(http.MethodPost); err != nil {
		return nil, err
	}

	secret, err := cfg.Get(ParamSecretKey)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(zap.String("gateway", Name), zap.String("alias", cfg.Alias))
	resp := gateway.NewResponse(g.now()).RawValues(cb.Form)

	var fields signing.Fields
	for key := range cb.Form {
		fields = append(fields, signing.Field{Key: key, Value: cb.Form.Get(key)})
	}
	resp.TransactionUUID = fields.Value("texte-libre")

	if v := fields.Value("montant"); v != "" {
		amount, code, err := ParseAmount(v)
		if err != nil {
			return resp.Fail("Invalid amount: " + v), nil
		}
		resp.SetAmount(amount)
		resp.CurrencyCode = code
	}

	if !callbackSigner.VerifyFields(fields, secret, fields.Value(macField)) {
		log.Warn("monetico MAC mismatch", zap.String("transaction_id", resp.TransactionUUID))
		return resp.Fail(macCheckFails), nil
	}
	resp.Verified = true

	code := fields.Value("code-retour")
	sc := returnCodes.Lookup(code)
	resp.Status = sc.Status
	resp.Message = sc.Message

	if code == returnCodeCancelled {
		if reason := fields.Value("motifrefus"); reason != "" {
			resp.Message = refusalReasons.Message(reason)
		}
	}

	log.Info("monetico callback parsed",
		zap.String("transaction_id", resp.TransactionUUID),
		zap.String("code_retour", code),
		zap.String("status", string(resp.Status)),
	)
	return resp, nil
}

// Acknowledge renders the receipt Monetico expects: cdr=0 when the MAC was
// valid, cdr=1 otherwise.
func (g *Gateway) Acknowledge(resp *gateway.Response) (string, []byte) {
	cdr := "1"
	if resp != nil && resp.Verified {
		cdr = "0"
	}
	return "text/plain", []byte("version=2\ncdr=" + cdr + "\n")
}
