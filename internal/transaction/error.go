package transaction

import (
	"errors"
	"fmt"
)

var (
	ErrMissingItemID     = errors.New("item id is required")
	ErrInvalidAmount     = errors.New("amount must be a positive integer in minor units")
	ErrMissingAlias      = errors.New("gateway configuration alias is required")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("transaction not found")
	ErrConcurrentUpdate  = errors.New("transaction was updated concurrently")
)

type TransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transaction %s: invalid transition %s -> %s", e.ID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
