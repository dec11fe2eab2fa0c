// Package metrics records delivery outcomes.
//
// The one-shot command writes the registry atomically to a *.prom file for the
// node_exporter textfile collector; the long-running server exposes it on /metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/senddtmf/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry with the send-dtmf collectors.
type Recorder struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
	openWait prometheus.Histogram
	bytes    prometheus.Counter
	lastRun  prometheus.Gauge
}

// New creates a Recorder whose series carry the control path as a constant label.
func New(controlPath string) *Recorder {
	labels := prometheus.Labels{"control_path": controlPath}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "send_dtmf_attempts_total",
				Help:        "DTMF delivery attempts by outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		openWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "send_dtmf_open_wait_seconds",
			Help:        "Time spent opening the control path",
			ConstLabels: labels,
			Buckets:     []float64{.001, .01, .05, .1, .5, 1, 5, 30},
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "send_dtmf_bytes_written_total",
			Help:        "Bytes written to the control path",
			ConstLabels: labels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "send_dtmf_last_run_timestamp_seconds",
			Help:        "Unix time of the last delivery attempt",
			ConstLabels: labels,
		}),
	}
	r.registry.MustRegister(r.attempts, r.openWait, r.bytes, r.lastRun)
	return r
}

// Observe records one attempt. outcome is a short label such as "ok" or "write_failed".
func (r *Recorder) Observe(outcome string, openWait time.Duration, written int, at time.Time) {
	r.attempts.WithLabelValues(outcome).Inc()
	if openWait > 0 {
		r.openWait.Observe(openWait.Seconds())
	}
	r.bytes.Add(float64(written))
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Outcome is the attempts label for err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMissingArgument):
		return "missing_argument"
	case errors.Is(err, domain.ErrInvalidSequence):
		return "invalid_sequence"
	case errors.Is(err, domain.ErrPathNotFound):
		return "path_not_found"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrOpenFailed):
		return "open_failed"
	case errors.Is(err, domain.ErrWriteFailed):
		return "write_failed"
	default:
		return "error"
	}
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}
