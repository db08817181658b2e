package gateway

import (
	"encoding/json"
	"net/url"
	"time"

	"paygate/internal/transaction"
)

// Response is the parsed outcome of one callback. It is never persisted.
type Response struct {
	TransactionUUID string             `json:"transaction_uuid,omitempty"`
	Status          transaction.Status `json:"status"`
	Message         string             `json:"message,omitempty"`
	Amount          *int64             `json:"amount,omitempty"`
	CurrencyCode    string             `json:"currency_code,omitempty"`
	Date            time.Time          `json:"date"`
	// Verified is true once the provider signature matched.
	Verified bool            `json:"verified"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// NewResponse starts FAILED; adapters promote the status once checks pass.
func NewResponse(now time.Time) *Response {
	return &Response{Status: transaction.StatusFailed, Date: now}
}

func (r *Response) Fail(message string) *Response {
	r.Status = transaction.StatusFailed
	r.Message = message
	return r
}

func (r *Response) SetAmount(amount int64) *Response {
	r.Amount = &amount
	return r
}

// RawValues captures form or query values for audit.
func (r *Response) RawValues(values url.Values) *Response {
	flat := make(map[string]string, len(values))
	for k := range values {
		flat[k] = values.Get(k)
	}
	raw, err := json.Marshal(flat)
	if err == nil {
		r.Raw = raw
	}
	return r
}

// RawBody captures a JSON body as-is, or as a JSON string when it is not valid JSON.
func (r *Response) RawBody(body []byte) *Response {
	if json.Valid(body) {
		r.Raw = append(json.RawMessage(nil), body...)
		return r
	}
	raw, _ := json.Marshal(string(body))
	r.Raw = raw
	return r
}
