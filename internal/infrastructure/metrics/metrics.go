package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	AuthRequests   *prometheus.CounterVec
	DecodeFailures *prometheus.CounterVec
	RefreshRuns    prometheus.Counter
	WarmupFailures *prometheus.CounterVec
}

// New creates the registry and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		AuthRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_auth_requests_total",
			Help: "Requests classified by trust tier and authentication outcome.",
		}, []string{"tier", "outcome"}),
		DecodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_token_decode_failures_total",
			Help: "Bearer token decode failures by reason.",
		}, []string{"reason"}),
		RefreshRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "authgate_config_refresh_runs_total",
			Help: "Completed configuration cache refresh cycles.",
		}),
		WarmupFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_config_warmup_failures_total",
			Help: "Cache warm-up failures by entry name.",
		}, []string{"entry"}),
	}
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
