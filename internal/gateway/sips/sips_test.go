package sips

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"testing"
	"time"

	"paygate/internal/gateway"
	"paygate/internal/signing"
	"paygate/internal/transaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "002001000000001_KEY1"

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *gateway.Configuration {
	return gateway.NewConfiguration("sips_test", NameSeal).
		Set(ParamMerchantID, "002001000000001").
		Set(ParamSecretKey, secret).
		Set(ParamKeyVersion, "1").
		Set(ParamInterfaceVersion, "HP_2.20").
		Set(ParamPaymentURL, "https://payment-webinit.simu.sips-services.com/paymentInit").
		Set(ParamNormalReturnURL, "https://shop.test/return").
		Set(ParamAutomaticResponseURL, "https://shop.test/payment-gateway/sips_test/callback")
}

func testTransaction() *transaction.Transaction {
	email := "buyer@example.com"
	return &transaction.Transaction{
		ID:                        "AbCdEfGhIjKlMnOpQrStUv",
		GatewayConfigurationAlias: "sips_test",
		ItemID:                    "item-1",
		Amount:                    1000,
		CurrencyCode:              "EUR",
		CustomerEmail:             &email,
		Status:                    transaction.StatusCreated,
	}
}

func sha256Seal(data, key string) string {
	sum := sha256.Sum256([]byte(data + key))
	return hex.EncodeToString(sum[:])
}

func postCallback(data, seal string) *gateway.Callback {
	form := url.Values{}
	form.Set("Data", data)
	form.Set("Seal", seal)
	form.Set("InterfaceVersion", "HP_2.20")
	return &gateway.Callback{Method: http.MethodPost, Form: form, Query: url.Values{}}
}

func TestGateway_ParameterNames(t *testing.T) {
	g := NewSealGateway()
	names := g.ParameterNames()
	assert.Equal(t, parameterNames, names)

	names[0] = "mutated"
	assert.Equal(t, ParamMerchantID, g.ParameterNames()[0])

	assert.NoError(t, testConfig().Validate(g))
}

func TestGateway_Initialize(t *testing.T) {
	g := NewSealGateway()
	cfg := testConfig()
	tx := testTransaction()

	req, err := g.Initialize(context.Background(), cfg, tx)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://payment-webinit.simu.sips-services.com/paymentInit", req.URL)
	assert.Equal(t, []string{"Data", "InterfaceVersion", "SealAlgorithm", "Seal"}, req.Fields.Keys())

	data := req.Fields.Value("Data")
	assert.Equal(t,
		"amount=1000|currencyCode=978|merchantId=002001000000001|normalReturnUrl=https://shop.test/return|"+
			"automaticResponseUrl=https://shop.test/payment-gateway/sips_test/callback|"+
			"transactionReference=AbCdEfGhIjKlMnOpQrStUv|orderId=AbCdEfGhIjKlMnOpQrStUv|"+
			"keyVersion=1|customerEmail=buyer@example.com",
		data)
	assert.Equal(t, sha256Seal(data, secret), req.Fields.Value("Seal"))
	assert.Equal(t, "HP_2.20", req.Fields.Value("InterfaceVersion"))
	assert.Equal(t, "SHA-256", req.Fields.Value("SealAlgorithm"))

	t.Run("Deterministic", func(t *testing.T) {
		again, err := g.Initialize(context.Background(), cfg, tx)
		require.NoError(t, err)
		assert.Equal(t, req, again)
	})

	t.Run("HMACVariant", func(t *testing.T) {
		hg := NewHMACGateway()
		hreq, err := hg.Initialize(context.Background(), cfg, tx)
		require.NoError(t, err)

		assert.Equal(t, data, hreq.Fields.Value("Data"))
		assert.Equal(t, "HMAC-SHA-256", hreq.Fields.Value("SealAlgorithm"))
		assert.Equal(t, hex.EncodeToString(signing.HMACSHA256([]byte(secret), []byte(data))), hreq.Fields.Value("Seal"))
	})

	t.Run("WithoutEmail", func(t *testing.T) {
		anon := testTransaction()
		anon.CustomerEmail = nil
		r, err := g.Initialize(context.Background(), cfg, anon)
		require.NoError(t, err)
		assert.NotContains(t, r.Fields.Value("Data"), "customerEmail")
	})

	t.Run("MissingParameter", func(t *testing.T) {
		partial := gateway.NewConfiguration("partial", NameSeal).Set(ParamSecretKey, secret)
		_, err := g.Initialize(context.Background(), partial, tx)
		assert.ErrorIs(t, err, gateway.ErrMissingParameter)
	})

	t.Run("CurrencyWithoutNumericCode", func(t *testing.T) {
		odd := testTransaction()
		odd.CurrencyCode = "XXX"
		_, err := g.Initialize(context.Background(), cfg, odd)
		assert.Error(t, err)
	})

	t.Run("BuildHTMLView", func(t *testing.T) {
		view, err := g.BuildHTMLView(context.Background(), cfg, tx)
		require.NoError(t, err)
		assert.Equal(t, "sips", view.Template)
		assert.Equal(t, req, view.Request)
	})
}

func TestGateway_GetResponse(t *testing.T) {
	g := NewSealGateway(WithClock(func() time.Time { return fixedNow }))
	cfg := testConfig()
	ctx := context.Background()

	t.Run("SealApproved", func(t *testing.T) {
		data := "orderId=X|responseCode=00|holderAuthentStatus=SUCCESS"

		resp, err := g.GetResponse(ctx, postCallback(data, sha256Seal(data, secret)), cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusApproved, resp.Status)
		assert.Equal(t, "X", resp.TransactionUUID)
		assert.True(t, resp.Verified)
		assert.Equal(t, fixedNow, resp.Date)
		assert.NotEmpty(t, resp.Raw)
	})

	t.Run("SealWithWrongSecret", func(t *testing.T) {
		data := "orderId=X|responseCode=00|holderAuthentStatus=SUCCESS"

		resp, err := g.GetResponse(ctx, postCallback(data, sha256Seal(data, "wrong_secret")), cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusFailed, resp.Status)
		assert.Equal(t, "Seal check failed", resp.Message)
		assert.Equal(t, "X", resp.TransactionUUID)
		assert.False(t, resp.Verified)
	})

	t.Run("CancelledByBuyer", func(t *testing.T) {
		data := "orderId=X|responseCode=17|amount=1000|currencyCode=978"

		resp, err := g.GetResponse(ctx, postCallback(data, sha256Seal(data, secret)), cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusCanceled, resp.Status)
		assert.Equal(t, responseCodes["17"].Message, resp.Message)
		require.NotNil(t, resp.Amount)
		assert.Equal(t, int64(1000), *resp.Amount)
		assert.Equal(t, "EUR", resp.CurrencyCode)
	})

	t.Run("EveryTableCode", func(t *testing.T) {
		for code, sc := range responseCodes {
			data := "orderId=X|responseCode=" + code
			resp, err := g.GetResponse(ctx, postCallback(data, sha256Seal(data, secret)), cfg)
			require.NoError(t, err)
			assert.Equal(t, sc.Status, resp.Status, code)
			assert.Equal(t, sc.Message, resp.Message, code)
		}
	})

	t.Run("UnknownCode", func(t *testing.T) {
		data := "orderId=X|responseCode=42"
		resp, err := g.GetResponse(ctx, postCallback(data, sha256Seal(data, secret)), cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusFailed, resp.Status)
		assert.Equal(t, "Unknown error code: 42", resp.Message)
	})

	t.Run("HolderAuthentFailure", func(t *testing.T) {
		data := "orderId=X|responseCode=00|holderAuthentStatus=FAILURE"
		resp, err := g.GetResponse(ctx, postCallback(data, sha256Seal(data, secret)), cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusFailed, resp.Status)
		assert.True(t, resp.Verified)
	})

	t.Run("PendingCode", func(t *testing.T) {
		data := "orderId=X|responseCode=60"
		resp, err := g.GetResponse(ctx, postCallback(data, sha256Seal(data, secret)), cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusPending, resp.Status)
	})

	t.Run("ReorderedDataBreaksSeal", func(t *testing.T) {
		data := "orderId=X|responseCode=00"
		seal := sha256Seal(data, secret)
		resp, err := g.GetResponse(ctx, postCallback("responseCode=00|orderId=X", seal), cfg)
		require.NoError(t, err)
		assert.Equal(t, "Seal check failed", resp.Message)
	})

	t.Run("TransactionReferenceFallback", func(t *testing.T) {
		data := "transactionReference=REF1|responseCode=00"
		resp, err := g.GetResponse(ctx, postCallback(data, sha256Seal(data, secret)), cfg)
		require.NoError(t, err)
		assert.Equal(t, "REF1", resp.TransactionUUID)
	})

	t.Run("UppercaseSeal", func(t *testing.T) {
		data := "orderId=X|responseCode=00"
		resp, err := g.GetResponse(ctx, postCallback(data, signing.UpperHex(mustDecode(t, sha256Seal(data, secret)))), cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusApproved, resp.Status)
	})

	t.Run("UnknownNumericCurrency", func(t *testing.T) {
		data := "orderId=X|responseCode=00|currencyCode=000"
		resp, err := g.GetResponse(ctx, postCallback(data, sha256Seal(data, secret)), cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusFailed, resp.Status)
		assert.Equal(t, "Unknown currency code: 000", resp.Message)
	})

	t.Run("MissingData", func(t *testing.T) {
		resp, err := g.GetResponse(ctx, &gateway.Callback{Method: http.MethodPost, Form: url.Values{}, Query: url.Values{}}, cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusFailed, resp.Status)
		assert.Empty(t, resp.TransactionUUID)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		_, err := g.GetResponse(ctx, &gateway.Callback{Method: http.MethodDelete}, cfg)
		assert.ErrorIs(t, err, gateway.ErrInvalidRequestMethod)
	})

	t.Run("MissingSecret", func(t *testing.T) {
		_, err := g.GetResponse(ctx, postCallback("orderId=X", "x"), gateway.NewConfiguration("empty", NameSeal))
		assert.ErrorIs(t, err, gateway.ErrMissingParameter)
	})

	t.Run("HMACRoundTrip", func(t *testing.T) {
		hg := NewHMACGateway()
		data := "orderId=X|responseCode=00"
		seal := hex.EncodeToString(signing.HMACSHA256([]byte(secret), []byte(data)))

		resp, err := hg.GetResponse(ctx, postCallback(data, seal), cfg)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusApproved, resp.Status)

		// a plain sha256 seal is not accepted by the HMAC variant
		resp, err = hg.GetResponse(ctx, postCallback(data, sha256Seal(data, secret)), cfg)
		require.NoError(t, err)
		assert.Equal(t, "Seal check failed", resp.Message)
	})
}

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
