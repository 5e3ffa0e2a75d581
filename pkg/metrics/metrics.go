// Package metrics exposes Prometheus instrumentation for the scanning
// service: probe and scan counters, finding counts by type and severity, and
// scan duration distribution. The registry is served on the API mux at
// /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// ProbesIssued counts outbound probe requests that captured a response.
	ProbesIssued = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "scandeck",
		Name:      "probes_issued_total",
		Help:      "Outbound probe requests that captured a response.",
	})

	// ProbeFailures counts swallowed probe failures (timeouts, DNS, TLS).
	ProbeFailures = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "scandeck",
		Name:      "probe_failures_total",
		Help:      "Probe requests that failed and were skipped.",
	})

	// ScansTotal counts completed scans by type.
	ScansTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "scandeck",
		Name:      "scans_total",
		Help:      "Completed scans by scan type.",
	}, []string{"type"})

	// FindingsTotal counts findings by vulnerability type and severity.
	FindingsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "scandeck",
		Name:      "findings_total",
		Help:      "Findings recorded by type and severity.",
	}, []string{"type", "severity"})

	// ScanDuration observes wall-clock scan duration in seconds by type.
	ScanDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scandeck",
		Name:      "scan_duration_seconds",
		Help:      "Scan duration distribution by scan type.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 12),
	}, []string{"type"})
)

// Handler returns the HTTP handler serving the service registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
