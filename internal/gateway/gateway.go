// Package gateway defines the contract every payment service provider adapter
// implements, along with the configuration, callback and response types they share.
package gateway

import (
	"context"

	"paygate/internal/signing"
	"paygate/internal/transaction"
)

type Gateway interface {
	// ParameterNames lists, in order, the configuration keys the gateway requires.
	ParameterNames() []string

	// Initialize builds and signs the outbound provider request.
	Initialize(ctx context.Context, cfg *Configuration, tx *transaction.Transaction) (*Request, error)

	// BuildHTMLView wraps Initialize into data a template can render.
	BuildHTMLView(ctx context.Context, cfg *Configuration, tx *transaction.Transaction) (*View, error)

	// GetResponse verifies and parses a callback. Business failures such as a
	// bad signature come back as a FAILED Response; errors are reserved for
	// contract violations and configuration problems.
	GetResponse(ctx context.Context, cb *Callback, cfg *Configuration) (*Response, error)
}

// Acknowledger is implemented by gateways whose provider expects a specific
// body in reply to a callback.
type Acknowledger interface {
	Acknowledge(resp *Response) (contentType string, body []byte)
}

// Request is the provider payload the end user is sent with.
type Request struct {
	URL    string         `json:"url"`
	Method string         `json:"method"`
	Fields signing.Fields `json:"fields"`
}

type View struct {
	Template string   `json:"template"`
	Request  *Request `json:"request"`
}

// NewView is the default BuildHTMLView body shared by adapters.
func NewView(template string, req *Request) *View {
	return &View{Template: template, Request: req}
}
