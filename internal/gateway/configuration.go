package gateway

import (
	"fmt"

	"paygate/internal/signing"
)

// Configuration is a named parameter bag bound to one gateway implementation.
type Configuration struct {
	Alias       string         `json:"alias"`
	GatewayName string         `json:"gateway_name"`
	Enabled     bool           `json:"enabled"`
	Parameters  signing.Fields `json:"-"`
}

func NewConfiguration(alias, gatewayName string) *Configuration {
	return &Configuration{Alias: alias, GatewayName: gatewayName, Enabled: true}
}

// Get returns the value for key, failing when the key is absent.
func (c *Configuration) Get(key string) (string, error) {
	v, ok := c.Parameters.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %q in configuration %q", ErrMissingParameter, key, c.Alias)
	}
	return v, nil
}

func (c *Configuration) Set(key, value string) *Configuration {
	c.Parameters.Set(key, value)
	return c
}

// Validate checks in one pass that every parameter g declares is present.
func (c *Configuration) Validate(g Gateway) error {
	var missing []string
	for _, name := range g.ParameterNames() {
		if !c.Parameters.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Alias: c.Alias, GatewayName: c.GatewayName, Missing: missing}
	}
	return nil
}

// Values resolves several parameters at once, reporting every missing one.
func (c *Configuration) Values(keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	var missing []string
	for _, k := range keys {
		v, ok := c.Parameters.Get(k)
		if !ok {
			missing = append(missing, k)
			continue
		}
		out[k] = v
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Alias: c.Alias, GatewayName: c.GatewayName, Missing: missing}
	}
	return out, nil
}
