package transaction

import (
	"time"
)

type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusCanceled   Status = "CANCELED"
	StatusFailed     Status = "FAILED"
	StatusUnverified Status = "UNVERIFIED"
)

// transitions lists every status a transaction may move to from a given status.
// Statuses absent from the map have no outgoing transition in this package.
var transitions = map[Status][]Status{
	StatusCreated: {StatusPending, StatusApproved, StatusCanceled, StatusFailed, StatusUnverified},
	StatusPending: {StatusApproved, StatusCanceled, StatusFailed},
}

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusPending, StatusApproved, StatusCanceled, StatusFailed, StatusUnverified:
		return true
	}
	return false
}

// IsTerminal reports whether no further change is expected once s is reached.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusCanceled || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether from -> to is an allowed move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Transaction struct {
	ID                        string    `json:"id"`
	GatewayConfigurationAlias string    `json:"gateway_configuration_alias"`
	ItemID                    string    `json:"item_id"`
	CustomerID                *string   `json:"customer_id,omitempty"`
	CustomerEmail             *string   `json:"customer_email,omitempty"`
	Description               *string   `json:"description,omitempty"`
	Amount                    int64     `json:"amount"`
	CurrencyCode              string    `json:"currency_code"`
	Status                    Status    `json:"status"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// Params carries the business data supplied by the caller when a payment is started.
type Params struct {
	ItemID        string  `json:"item_id"`
	Amount        int64   `json:"amount"`
	CurrencyCode  string  `json:"currency_code"`
	CustomerID    *string `json:"customer_id,omitempty"`
	CustomerEmail *string `json:"customer_email,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// Transition moves the transaction to the given status.
func (t *Transaction) Transition(to Status) error {
	if !CanTransition(t.Status, to) {
		return &TransitionError{ID: t.ID, From: t.Status, To: to}
	}
	t.Status = to
	return nil
}
