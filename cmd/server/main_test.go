package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paygate/internal/auth"
	"paygate/internal/config"
	"paygate/internal/lock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminSecret = "0123456789abcdef0123456789abcdef"
	gatewayYAML = `
configurations:
  - alias: sips_test
    gateway: sips_seal
    parameters:
      merchant_id: "002001000000001"
      secret_key: "002001000000001_KEY1"
      key_version: "1"
      interface_version: HP_2.20
      payment_url: https://payment.test/paymentInit
      normal_return_url: https://shop.test/return
      automatic_response_url: https://shop.test/payment-gateway/sips_test/callback
`
)

func writeGatewayFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateways.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppEnv:            "test",
		AppPort:           "8080",
		GatewayConfigFile: writeGatewayFile(t, gatewayYAML),
		AdminJWTSecret:    adminSecret,
		PublicBaseURL:     "https://pay.test",
	}
}

func TestSetupRouter(t *testing.T) {
	svc, err := newServices(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	router := setupRouter(svc)

	t.Run("Health Check", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "ok")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("Admin requires token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/gateways", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Admin gateways", func(t *testing.T) {
		token, err := auth.IssueAdminToken([]byte(adminSecret), "ops", time.Hour, time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin/gateways", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		for _, name := range []string{"sips_seal", "sips_hmac", "monetico", "eureka", "xendit"} {
			assert.Contains(t, rr.Body.String(), name)
		}
	})

	t.Run("Create transaction", func(t *testing.T) {
		body := `{"item_id":"item-1","amount":1000,"currency_code":"EUR"}`
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payment-gateway/sips_test/transactions", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), "https://payment.test/paymentInit")
	})

	t.Run("Unknown alias", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payment-gateway/nope/callback", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Callback without transaction id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payment-gateway/sips_test/callback", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestNewServices(t *testing.T) {
	t.Run("Invalid gateway file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GatewayConfigFile = writeGatewayFile(t, "configurations:\n  - alias: broken\n    gateway: sips_seal\n")

		_, err := newServices(context.Background(), cfg, nil)
		assert.ErrorContains(t, err, "broken")
	})

	t.Run("Database backed", func(t *testing.T) {
		database, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer database.Close()

		mock.ExpectQuery("FROM payment_gateway_configurations c").
			WillReturnRows(sqlmock.NewRows([]string{"alias", "gateway_name", "enabled", "key", "value"}))

		cfg := testConfig(t)
		cfg.GatewayConfigFile = ""
		svc, err := newServices(context.Background(), cfg, database)
		require.NoError(t, err)
		assert.NotNil(t, svc.health)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No configuration source", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GatewayConfigFile = ""
		_, err := newServices(context.Background(), cfg, nil)
		assert.Error(t, err)
	})

	t.Run("Redis lock", func(t *testing.T) {
		orig := initRedisFunc
		defer func() { initRedisFunc = orig }()

		var dialed string
		initRedisFunc = func(_ context.Context, addr string) (lock.RedisClient, error) {
			dialed = addr
			return redis.NewClient(&redis.Options{Addr: addr}), nil
		}

		cfg := testConfig(t)
		cfg.RedisAddr = "localhost:6379"
		_, err := newServices(context.Background(), cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", dialed)
	})

	t.Run("Redis unavailable", func(t *testing.T) {
		orig := initRedisFunc
		defer func() { initRedisFunc = orig }()
		initRedisFunc = func(context.Context, string) (lock.RedisClient, error) {
			return nil, errors.New("failed to connect to redis")
		}

		cfg := testConfig(t)
		cfg.RedisAddr = "localhost:6379"
		_, err := newServices(context.Background(), cfg, nil)
		assert.ErrorContains(t, err, "redis")
	})
}

func TestRun(t *testing.T) {
	origStartServer := startServerFunc
	defer func() { startServerFunc = origStartServer }()

	var addr string
	startServerFunc = func(srv *http.Server) error {
		addr = srv.Addr
		return http.ErrServerClosed
	}

	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "9099")
	t.Setenv("DB_HOST", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("GATEWAY_CONFIG_FILE", writeGatewayFile(t, gatewayYAML))

	assert.NoError(t, run())
	assert.Equal(t, ":9099", addr)
}

func TestRun_ConfigError(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("GATEWAY_CONFIG_FILE", "")

	assert.ErrorIs(t, run(), config.ErrInvalidConfig)
}

func TestRun_DatabaseError(t *testing.T) {
	origInitDB := initDBFunc
	defer func() { initDBFunc = origInitDB }()
	initDBFunc = func(*config.Config) (*sql.DB, error) {
		return nil, errors.New("failed to ping DB")
	}

	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_NAME", "db")

	assert.ErrorContains(t, run(), "failed to ping DB")
}
