package transaction

import (
	"encoding/base64"
	"fmt"
	"strings"

	"paygate/internal/currency"

	"github.com/google/uuid"
)

// NewID returns a 22 character URL-safe identifier backed by a random UUID.
func NewID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// New validates params and builds a CREATED transaction bound to alias.
// Timestamps are left for the persistence layer.
func New(alias string, params Params) (*Transaction, error) {
	if strings.TrimSpace(alias) == "" {
		return nil, ErrMissingAlias
	}
	if strings.TrimSpace(params.ItemID) == "" {
		return nil, ErrMissingItemID
	}
	if params.Amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, params.Amount)
	}

	code, err := currency.Validate(params.CurrencyCode)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		ID:                        NewID(),
		GatewayConfigurationAlias: alias,
		ItemID:                    params.ItemID,
		CustomerID:                params.CustomerID,
		CustomerEmail:             params.CustomerEmail,
		Description:               params.Description,
		Amount:                    params.Amount,
		CurrencyCode:              code,
		Status:                    StatusCreated,
	}, nil
}
