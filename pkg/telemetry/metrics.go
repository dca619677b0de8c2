package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the provisioning engine. A nil
// *Metrics or a disabled configuration yields no-op recording, so callers
// never need to guard instrumentation sites.
type Metrics struct {
	config MetricsConfig

	provisions        *prometheus.CounterVec
	provisionDuration *prometheus.HistogramVec
	statusChanges     *prometheus.CounterVec
	storeOpDuration   *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	registry *prometheus.Registry
	server   *http.Server
}

// NewMetrics creates a metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "vmweaver"
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		provisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provisions_total",
				Help:      "Total number of provisioning requests processed",
			},
			[]string{"provider", "status"},
		),
		provisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provision_duration_seconds",
				Help:      "Duration of provisioning requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		statusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vm_status_changes_total",
				Help:      "Total number of VM status transitions applied",
			},
			[]string{"provider", "status"},
		),
		storeOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of repository operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "path", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	collectors := []prometheus.Collector{
		m.provisions,
		m.provisionDuration,
		m.statusChanges,
		m.storeOpDuration,
		m.httpRequests,
		m.httpDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordProvision records a completed provisioning request.
func (m *Metrics) RecordProvision(provider, status string, duration time.Duration) {
	if m == nil || m.registry == nil {
		return
	}
	m.provisions.WithLabelValues(provider, status).Inc()
	m.provisionDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordStatusChange records an applied VM status transition.
func (m *Metrics) RecordStatusChange(provider, status string) {
	if m == nil || m.registry == nil {
		return
	}
	m.statusChanges.WithLabelValues(provider, status).Inc()
}

// RecordStoreOperation records the duration of a repository operation.
func (m *Metrics) RecordStoreOperation(operation string, duration time.Duration) {
	if m == nil || m.registry == nil {
		return
	}
	m.storeOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, code string, duration time.Duration) {
	if m == nil || m.registry == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, code).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler returns the HTTP handler exposing the metrics, or nil when
// metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the standalone metrics listener when a listen address
// is configured. It returns immediately; serve errors other than graceful
// shutdown are reported on the returned channel.
func (m *Metrics) StartServer() <-chan error {
	errCh := make(chan error, 1)
	if m == nil || m.registry == nil || m.config.ListenAddress == "" {
		close(errCh)
		return errCh
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	m.server = &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		defer close(errCh)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return errCh
}

// Shutdown stops the standalone metrics listener, if one was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
