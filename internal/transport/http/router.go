// Package httptransport assembles the HTTP surface: the middleware chain,
// the feature handlers and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"visitgate/internal/platform/metrics"
	"visitgate/internal/platform/middleware"
)

// Registrar is anything that can mount routes on the router. Feature
// handlers implement it.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the top-level router. The middleware chain applies to
// every API route; /healthz and /metrics sit outside it so probes stay
// cheap and unlogged.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, handlers ...Registrar) http.Handler {
	root := chi.NewRouter()

	root.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	root.Method(http.MethodGet, "/metrics", promhttp.Handler())

	api := chi.NewRouter()
	api.Use(middleware.Recovery(logger))
	api.Use(middleware.RequestID)
	api.Use(middleware.RequestTime)
	api.Use(middleware.ClientMetadata)
	api.Use(middleware.Logger(logger))
	api.Use(middleware.Timeout(30 * time.Second))
	api.Use(middleware.Latency(m))
	for _, handler := range handlers {
		handler.Register(api)
	}

	root.Mount("/", api)
	return root
}
