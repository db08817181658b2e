package webhook

import (
	"net/http"

	"paygate/internal/gateway"
	"paygate/internal/metrics"
)

type GatewayInfo struct {
	Name           string   `json:"name"`
	ParameterNames []string `json:"parameter_names"`
}

// Gateways handles GET /admin/gateways.
func Gateways(registry *gateway.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := registry.Names()
		out := make([]GatewayInfo, 0, len(names))
		for _, name := range names {
			g, err := registry.Get(name)
			if err != nil {
				continue
			}
			out = append(out, GatewayInfo{Name: name, ParameterNames: g.ParameterNames()})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"gateways": out})
	}
}

// Metrics handles GET /admin/metrics.
func Metrics(m *metrics.Callbacks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.Snapshot())
	}
}

// Health handles GET /health. check may be nil.
func Health(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Register mounts the public payment routes on mux. wrapCallback, when not
// nil, decorates the callback route (rate limiting).
func (h *Handler) Register(mux *http.ServeMux, wrapCallback func(http.Handler) http.Handler) {
	var callback http.Handler = http.HandlerFunc(h.Callback)
	if wrapCallback != nil {
		callback = wrapCallback(callback)
	}
	mux.Handle("GET /payment-gateway/{alias}/callback", callback)
	mux.Handle("POST /payment-gateway/{alias}/callback", callback)
	mux.HandleFunc("POST /payment-gateway/{alias}/transactions", h.CreateTransaction)
}
