package xendit

import (
	"encoding/json"
	"time"
)

type paymentRequest struct {
	ReferenceID       string            `json:"reference_id"`
	Type              string            `json:"type"`
	Country           string            `json:"country"`
	Currency          string            `json:"currency"`
	RequestAmount     json.Number       `json:"request_amount"`
	ChannelCode       string            `json:"channel_code"`
	Description       string            `json:"description,omitempty"`
	Customer          *customer         `json:"customer,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	ChannelProperties channelProperties `json:"channel_properties"`
}

type customer struct {
	Type        string `json:"type"`
	ReferenceID string `json:"reference_id"`
	Email       string `json:"email,omitempty"`
}

type channelProperties struct {
	FailureReturnURL string `json:"failure_return_url"`
	SuccessReturnURL string `json:"success_return_url"`
	ExpiresAt        string `json:"expires_at,omitempty"`
}

type paymentRequestResponse struct {
	PaymentRequestID string `json:"payment_request_id"`
	ReferenceID      string `json:"reference_id"`
	Status           string `json:"status"`
	ChannelCode      string `json:"channel_code"`
	Actions          []struct {
		Type       string `json:"type"`
		Descriptor string `json:"descriptor"`
		Value      string `json:"value"`
	} `json:"actions"`
	ChannelProperties struct {
		ExpiresAt *time.Time `json:"expires_at"`
	} `json:"channel_properties"`
}

// webhookPayload is the body of a payment.* event notification.
type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		PaymentID        string      `json:"payment_id"`
		PaymentRequestID string      `json:"payment_request_id"`
		ReferenceID      string      `json:"reference_id"`
		Status           string      `json:"status"`
		RequestAmount    json.Number `json:"request_amount"`
		Currency         string      `json:"currency"`
		FailureCode      string      `json:"failure_code"`
	} `json:"data"`
}
