// Package providers wires the built-in gateway implementations into a registry.
package providers

import (
	"errors"
	"net/http"
	"time"

	"paygate/internal/gateway"
	"paygate/internal/gateway/eureka"
	"paygate/internal/gateway/monetico"
	"paygate/internal/gateway/sips"
	"paygate/internal/gateway/xendit"
)

type Options struct {
	// Now stamps callback responses and outbound dates. Defaults to time.Now.
	Now func() time.Time
	// HTTPClient is used by API based providers. Nil keeps each provider's default.
	HTTPClient    *http.Client
	XenditBaseURL string
}

// RegisterDefaults registers every built-in gateway under its canonical name.
func RegisterDefaults(r *gateway.Registry, opts Options) error {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	xenditOpts := []xendit.Option{xendit.WithClock(now), xendit.WithBaseURL(opts.XenditBaseURL)}
	if opts.HTTPClient != nil {
		xenditOpts = append(xenditOpts, xendit.WithHTTPClient(opts.HTTPClient))
	}

	return errors.Join(
		r.Register(sips.NameSeal, sips.NewSealGateway(sips.WithClock(now))),
		r.Register(sips.NameHMAC, sips.NewHMACGateway(sips.WithClock(now))),
		r.Register(monetico.Name, monetico.NewGateway(now)),
		r.Register(eureka.Name, eureka.NewGateway(now)),
		r.Register(xendit.Name, xendit.NewGateway(xenditOpts...)),
	)
}

// NewRegistry returns a registry holding the built-in gateways.
func NewRegistry(opts Options) (*gateway.Registry, error) {
	r := gateway.NewRegistry()
	if err := RegisterDefaults(r, opts); err != nil {
		return nil, err
	}
	return r, nil
}
