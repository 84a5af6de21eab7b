// Package metrics exposes the keep's Prometheus counters and the
// sidecar server that serves them.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WorkloadsReceived counts bodies received on the workload endpoint.
	WorkloadsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workloads_received_total",
		Help: "Workload request bodies received.",
	})

	// EnvelopeRejections counts bodies rejected by the envelope codec.
	EnvelopeRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "envelope_rejections_total",
		Help: "Workload bodies rejected as malformed.",
	})

	// DispatchFailures counts execution subsystem failures.
	DispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_failures_total",
		Help: "Workload dispatches that ended in error.",
	})

	// DispatchSuccesses counts successfully executed workloads. The
	// process exits right after incrementing it, so in practice this is
	// only ever observed through the exit code and logs.
	DispatchSuccesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_successes_total",
		Help: "Workload dispatches that completed successfully.",
	})
)

// MetricsServer serves the Prometheus registry on a dedicated address.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics sidecar server listening on addr.
func New(addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving the metrics endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
