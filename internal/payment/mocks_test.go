package payment

import (
	"context"

	"paygate/internal/gateway"
	"paygate/internal/transaction"

	"github.com/stretchr/testify/mock"
)

type MockManager struct {
	mock.Mock
}

func (m *MockManager) Save(ctx context.Context, t *transaction.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockManager) Retrieve(ctx context.Context, id string) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockManager) UpdateStatus(ctx context.Context, t *transaction.Transaction, previous transaction.Status) error {
	args := m.Called(ctx, t, previous)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ParameterNames() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockGateway) Initialize(ctx context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.Request, error) {
	args := m.Called(ctx, cfg, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Request), args.Error(1)
}

func (m *MockGateway) BuildHTMLView(ctx context.Context, cfg *gateway.Configuration, tx *transaction.Transaction) (*gateway.View, error) {
	args := m.Called(ctx, cfg, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.View), args.Error(1)
}

func (m *MockGateway) GetResponse(ctx context.Context, cb *gateway.Callback, cfg *gateway.Configuration) (*gateway.Response, error) {
	args := m.Called(ctx, cb, cfg)
	if fn, ok := args.Get(0).(func(context.Context, *gateway.Callback, *gateway.Configuration) *gateway.Response); ok {
		return fn(ctx, cb, cfg), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Response), args.Error(1)
}

type MockListener struct {
	mock.Mock
}

func (m *MockListener) TransactionCreated(ctx context.Context, tx *transaction.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockListener) TransactionUpdated(ctx context.Context, result *Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

type MockCallbackLog struct {
	mock.Mock
}

func (m *MockCallbackLog) RecordCallback(ctx context.Context, alias string, result *Result) (int64, bool, error) {
	args := m.Called(ctx, alias, result)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}
