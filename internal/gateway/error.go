package gateway

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUndefinedGateway      = errors.New("undefined payment gateway")
	ErrDuplicateGateway      = errors.New("payment gateway already registered")
	ErrNoConfigurationFound  = errors.New("no payment gateway configuration found")
	ErrConfigurationDisabled = errors.New("payment gateway configuration is disabled")
	ErrMissingParameter      = errors.New("missing payment gateway configuration parameter")
	ErrInvalidRequestMethod  = errors.New("invalid callback request method")
	ErrInvalidCallback       = errors.New("invalid callback request")
	// ErrTransport wraps failed outbound calls to a provider API.
	ErrTransport = errors.New("payment provider transport error")
)

// ValidationError lists every parameter a configuration misses for its gateway.
type ValidationError struct {
	Alias       string
	GatewayName string
	Missing     []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration %q (%s): missing parameters: %s",
		e.Alias, e.GatewayName, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrMissingParameter
}
