package payment

import (
	"context"
	"testing"

	"paygate/internal/configuration"
	"paygate/internal/gateway"
	"paygate/internal/transaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T, cfgs ...*gateway.Configuration) *Factory {
	t.Helper()

	g := new(MockGateway)
	g.On("ParameterNames").Return([]string{"secret_key"})

	r := gateway.NewRegistry()
	require.NoError(t, r.Register("sips_seal", g))

	store, err := configuration.NewMemoryStore(cfgs...)
	require.NoError(t, err)

	return NewFactory(r, store, transaction.NewMemoryRepository())
}

func TestFactory_Context(t *testing.T) {
	disabled := gateway.NewConfiguration("off", "sips_seal").Set("secret_key", "s")
	disabled.Enabled = false

	f := newTestFactory(t,
		gateway.NewConfiguration("sips_test", "sips_seal").Set("secret_key", "s"),
		gateway.NewConfiguration("incomplete", "sips_seal"),
		gateway.NewConfiguration("paypal", "paypal"),
		disabled,
	)

	t.Run("Success", func(t *testing.T) {
		c, err := f.Context(context.Background(), "sips_test")
		require.NoError(t, err)
		assert.Equal(t, "sips_test", c.Configuration().Alias)
		assert.NotNil(t, c.Gateway())
	})

	t.Run("UnknownAlias", func(t *testing.T) {
		_, err := f.Context(context.Background(), "missing")
		assert.ErrorIs(t, err, gateway.ErrNoConfigurationFound)
	})

	t.Run("UnknownGateway", func(t *testing.T) {
		_, err := f.Context(context.Background(), "paypal")
		assert.ErrorIs(t, err, gateway.ErrUndefinedGateway)
	})

	t.Run("Disabled", func(t *testing.T) {
		_, err := f.Context(context.Background(), "off")
		assert.ErrorIs(t, err, gateway.ErrConfigurationDisabled)
	})

	t.Run("MissingParameter", func(t *testing.T) {
		_, err := f.Context(context.Background(), "incomplete")
		assert.ErrorIs(t, err, gateway.ErrMissingParameter)
	})

	t.Run("SharedLocker", func(t *testing.T) {
		a, err := f.Context(context.Background(), "sips_test")
		require.NoError(t, err)
		b, err := f.Context(context.Background(), "sips_test")
		require.NoError(t, err)
		assert.Same(t, a.opts.locker, b.opts.locker)
	})
}
