// =============================================================================
// SWIFT MT Engine - Metrics
// =============================================================================
//
// Prometheus instruments for the batch converter and the HTTP server. All
// instruments live in a dedicated registry, served at /metrics by the server
// and written to a node_exporter textfile by the batch command.
//
// =============================================================================

package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "swiftmt"

var (
	registerOnce sync.Once

	// Registry holds every swiftmt instrument.
	Registry = prometheus.NewRegistry()

	messagesParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "messages_total",
			Help:      "Messages parsed, by message type and outcome.",
		},
		[]string{"type", "outcome"},
	)
	parseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "duration_seconds",
			Help:      "Time to parse one message.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"type"},
	)
	validationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "errors_total",
			Help:      "Rule violations, by message type and network code.",
		},
		[]string{"type", "code"},
	)
	filesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "files_total",
			Help:      "Input files processed, by outcome.",
		},
		[]string{"status"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Register adds the instruments to Registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			messagesParsed, parseDuration, validationErrors,
			filesProcessed, httpRequests, httpDuration,
			collectors.NewGoCollector(),
		)
	})
}

// RecordParse counts one parse attempt. outcome is "ok" or the error kind.
func RecordParse(messageType, outcome string, duration time.Duration) {
	Register()
	if messageType == "" {
		messageType = "unknown"
	}
	messagesParsed.WithLabelValues(messageType, outcome).Inc()
	parseDuration.WithLabelValues(messageType).Observe(duration.Seconds())
}

// RecordValidation counts the violations of one message by code.
func RecordValidation(messageType string, codes []string) {
	Register()
	for _, c := range codes {
		validationErrors.WithLabelValues(messageType, c).Inc()
	}
}

// RecordFile counts one processed input file.
func RecordFile(success bool) {
	Register()
	status := "success"
	if !success {
		status = "failed"
	}
	filesProcessed.WithLabelValues(status).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	Register()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// WriteTextfile writes the current values in the node_exporter textfile
// format.
func WriteTextfile(path string) error {
	Register()
	return prometheus.WriteToTextfile(path, Registry)
}
