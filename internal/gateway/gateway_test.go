package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"paygate/internal/signing"
	"paygate/internal/transaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	names []string
}

func (s *stubGateway) ParameterNames() []string { return s.names }

func (s *stubGateway) Initialize(context.Context, *Configuration, *transaction.Transaction) (*Request, error) {
	return &Request{Method: http.MethodPost}, nil
}

func (s *stubGateway) BuildHTMLView(ctx context.Context, cfg *Configuration, tx *transaction.Transaction) (*View, error) {
	req, err := s.Initialize(ctx, cfg, tx)
	if err != nil {
		return nil, err
	}
	return NewView("stub", req), nil
}

func (s *stubGateway) GetResponse(context.Context, *Callback, *Configuration) (*Response, error) {
	return NewResponse(time.Now()), nil
}

func TestConfiguration(t *testing.T) {
	cfg := NewConfiguration("sips_test", "sips_seal").
		Set("merchant_id", "002001000000001").
		Set("secret_key", "s3cr3t")

	t.Run("Get", func(t *testing.T) {
		v, err := cfg.Get("merchant_id")
		require.NoError(t, err)
		assert.Equal(t, "002001000000001", v)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := cfg.Get("key_version")
		assert.ErrorIs(t, err, ErrMissingParameter)
		assert.Contains(t, err.Error(), "sips_test")
	})

	t.Run("SetKeepsOrder", func(t *testing.T) {
		cfg.Set("merchant_id", "other")
		assert.Equal(t, []string{"merchant_id", "secret_key"}, cfg.Parameters.Keys())
	})

	t.Run("Validate", func(t *testing.T) {
		g := &stubGateway{names: []string{"merchant_id", "secret_key", "key_version", "payment_url"}}

		err := cfg.Validate(g)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingParameter))

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"key_version", "payment_url"}, ve.Missing)

		cfg.Set("key_version", "1").Set("payment_url", "https://example.test")
		assert.NoError(t, cfg.Validate(g))
	})

	t.Run("Values", func(t *testing.T) {
		v, err := cfg.Values("merchant_id", "secret_key")
		require.NoError(t, err)
		assert.Equal(t, "other", v["merchant_id"])

		_, err = cfg.Values("merchant_id", "nope", "nada")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"nope", "nada"}, ve.Missing)
	})
}

func TestCodeTable(t *testing.T) {
	table := CodeTable{
		"00": {transaction.StatusApproved, "Authorisation accepted"},
		"17": {transaction.StatusCanceled, "Cancelled by the buyer"},
	}

	for code, sc := range table {
		got := table.Lookup(code)
		assert.Equal(t, sc.Status, got.Status)
		assert.Equal(t, sc.Message, got.Message)
	}

	unknown := table.Lookup("42")
	assert.Equal(t, transaction.StatusFailed, unknown.Status)
	assert.Equal(t, "Unknown error code: 42", unknown.Message)
	assert.Equal(t, "Unknown error code: 42", table.Message("42"))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	g := &stubGateway{names: []string{"secret_key"}}

	require.NoError(t, reg.Register("stub", g))
	require.NoError(t, reg.Register("another", &stubGateway{}))

	t.Run("Duplicate", func(t *testing.T) {
		assert.ErrorIs(t, reg.Register("stub", g), ErrDuplicateGateway)
	})

	t.Run("Get", func(t *testing.T) {
		got, err := reg.Get("stub")
		require.NoError(t, err)
		assert.Same(t, g, got)
	})

	t.Run("Undefined", func(t *testing.T) {
		_, err := reg.Get("paypal")
		assert.ErrorIs(t, err, ErrUndefinedGateway)
	})

	t.Run("Names", func(t *testing.T) {
		assert.Equal(t, []string{"another", "stub"}, reg.Names())
	})

	t.Run("Validate", func(t *testing.T) {
		_, err := reg.Validate(NewConfiguration("a", "stub"))
		assert.ErrorIs(t, err, ErrMissingParameter)

		got, err := reg.Validate(NewConfiguration("a", "stub").Set("secret_key", "x"))
		require.NoError(t, err)
		assert.Same(t, g, got)

		_, err = reg.Validate(NewConfiguration("a", "unknown"))
		assert.ErrorIs(t, err, ErrUndefinedGateway)
	})
}

func TestCallbackFromHTTP(t *testing.T) {
	t.Run("Form", func(t *testing.T) {
		form := url.Values{}
		form.Set("Data", "orderId=X|responseCode=00")
		form.Set("Seal", "abc")

		req := httptest.NewRequest(http.MethodPost, "/payment-gateway/sips/callback?lang=fr", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

		cb, err := CallbackFromHTTP(req)
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, cb.Method)
		assert.Equal(t, "orderId=X|responseCode=00", cb.Value("Data"))
		assert.Equal(t, "fr", cb.Value("lang"))
		assert.Equal(t, "abc", cb.Params().Get("Seal"))
	})

	t.Run("JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cb", strings.NewReader(`{"status":"PAID"}`))
		req.Header.Set("Content-Type", "application/json")

		cb, err := CallbackFromHTTP(req)
		require.NoError(t, err)
		assert.Empty(t, cb.Form)
		assert.JSONEq(t, `{"status":"PAID"}`, string(cb.Body))
	})

	t.Run("Query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cb?Data=a%3D1&Seal=x", nil)

		cb, err := CallbackFromHTTP(req)
		require.NoError(t, err)
		assert.Equal(t, "a=1", cb.Value("Data"))
	})

	t.Run("RequireMethod", func(t *testing.T) {
		cb := &Callback{Method: http.MethodPut}
		assert.ErrorIs(t, cb.RequireMethod(http.MethodPost, http.MethodGet), ErrInvalidRequestMethod)
		assert.NoError(t, (&Callback{Method: http.MethodGet}).RequireMethod(http.MethodPost, http.MethodGet))
	})
}

func TestResponse(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("DefaultsToFailed", func(t *testing.T) {
		r := NewResponse(now)
		assert.Equal(t, transaction.StatusFailed, r.Status)
		assert.Equal(t, now, r.Date)
		assert.False(t, r.Verified)
	})

	t.Run("RawValues", func(t *testing.T) {
		r := NewResponse(now).RawValues(url.Values{"Data": {"a=1"}, "Seal": {"x"}})

		var raw map[string]string
		require.NoError(t, json.Unmarshal(r.Raw, &raw))
		assert.Equal(t, map[string]string{"Data": "a=1", "Seal": "x"}, raw)
	})

	t.Run("RawBody", func(t *testing.T) {
		r := NewResponse(now).RawBody([]byte(`{"a":1}`))
		assert.JSONEq(t, `{"a":1}`, string(r.Raw))

		r.RawBody([]byte("not json"))
		assert.Equal(t, `"not json"`, string(r.Raw))
	})

	t.Run("Fail", func(t *testing.T) {
		r := NewResponse(now).SetAmount(100)
		r.Status = transaction.StatusApproved
		r.Fail("Seal check failed")
		assert.Equal(t, transaction.StatusFailed, r.Status)
		assert.Equal(t, "Seal check failed", r.Message)
		assert.Equal(t, int64(100), *r.Amount)
	})
}

func TestRequestJSON(t *testing.T) {
	req := &Request{URL: "https://psp.test", Method: http.MethodPost, Fields: signing.Fields{{Key: "Data", Value: "a=1"}, {Key: "Seal", Value: "x"}}}
	b, err := json.Marshal(NewView("sips", req))
	require.NoError(t, err)
	assert.JSONEq(t, `{"template":"sips","request":{"url":"https://psp.test","method":"POST","fields":[{"key":"Data","value":"a=1"},{"key":"Seal","value":"x"}]}}`, string(b))
}
