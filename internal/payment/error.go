package payment

import "errors"

var (
	ErrNoTransactionID    = errors.New("no transaction id found for this callback")
	ErrNoTransactionFound = errors.New("no transaction found for this callback")
)
