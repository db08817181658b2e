package transaction

import (
	"regexp"
	"testing"

	"paygate/internal/currency"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	urlSafe := regexp.MustCompile(`^[A-Za-z0-9_-]{22}$`)
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.Regexp(t, urlSafe, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNew(t *testing.T) {
	email := "buyer@example.com"

	t.Run("Success", func(t *testing.T) {
		tx, err := New("sips_test", Params{
			ItemID:        "item-1",
			Amount:        1000,
			CurrencyCode:  "eur",
			CustomerEmail: &email,
		})
		require.NoError(t, err)

		assert.NotEmpty(t, tx.ID)
		assert.Equal(t, "sips_test", tx.GatewayConfigurationAlias)
		assert.Equal(t, "item-1", tx.ItemID)
		assert.Equal(t, int64(1000), tx.Amount)
		assert.Equal(t, "EUR", tx.CurrencyCode)
		assert.Equal(t, StatusCreated, tx.Status)
		assert.Equal(t, &email, tx.CustomerEmail)
		assert.True(t, tx.CreatedAt.IsZero())
	})

	t.Run("MissingAlias", func(t *testing.T) {
		_, err := New(" ", Params{ItemID: "item-1", Amount: 1, CurrencyCode: "EUR"})
		assert.ErrorIs(t, err, ErrMissingAlias)
	})

	t.Run("MissingItemID", func(t *testing.T) {
		_, err := New("alias", Params{Amount: 1, CurrencyCode: "EUR"})
		assert.ErrorIs(t, err, ErrMissingItemID)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		_, err := New("alias", Params{ItemID: "item-1", Amount: 0, CurrencyCode: "EUR"})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = New("alias", Params{ItemID: "item-1", Amount: -5, CurrencyCode: "EUR"})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("UnknownCurrency", func(t *testing.T) {
		_, err := New("alias", Params{ItemID: "item-1", Amount: 10, CurrencyCode: "ZZZ"})
		assert.ErrorIs(t, err, currency.ErrUnknownCurrency)
	})
}
