package gateway

import (
	"fmt"

	"paygate/internal/transaction"
)

type StatusCode struct {
	Status  transaction.Status
	Message string
}

// CodeTable maps provider specific response codes to canonical statuses.
type CodeTable map[string]StatusCode

// Lookup never fails: unknown codes resolve to FAILED with a fallback message.
func (t CodeTable) Lookup(code string) StatusCode {
	if sc, ok := t[code]; ok {
		return sc
	}
	return StatusCode{
		Status:  transaction.StatusFailed,
		Message: UnknownCodeMessage(code),
	}
}

func (t CodeTable) Message(code string) string {
	return t.Lookup(code).Message
}

func UnknownCodeMessage(code string) string {
	return fmt.Sprintf("Unknown error code: %s", code)
}
