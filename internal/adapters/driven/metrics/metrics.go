// Package metrics records pipeline activity as Prometheus metrics.
//
// The CLI is a short-lived process, so metrics are not served: they are
// written in text exposition format to a file for the node exporter's
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Metrics = (*Prometheus)(nil)

const namespace = "ingest"

// Prometheus holds the pipeline metrics in their own registry.
type Prometheus struct {
	registry *prometheus.Registry

	outcomes      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	published     *prometheus.CounterVec
	lastRun       prometheus.Gauge
}

// New creates and registers the pipeline metrics.
func New() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files reaching a terminal state, by handler, state and last stage",
		}, []string{"handler", "state", "stage"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time taken to enter each pipeline stage",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"handler", "stage"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_bytes_total",
			Help:      "Bytes written per publish destination",
		}, []string{"handler", "destination"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the metrics were last written",
		}),
	}
	p.registry.MustRegister(p.outcomes, p.stageDuration, p.published, p.lastRun)
	return p
}

// Registry returns the registry holding the pipeline metrics.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// ObserveOutcome counts a terminal outcome.
func (p *Prometheus) ObserveOutcome(handler string, state, stage domain.State) {
	p.outcomes.WithLabelValues(handler, string(state), string(stage)).Inc()
}

// ObserveStage records how long a stage took.
func (p *Prometheus) ObserveStage(handler string, stage domain.State, d time.Duration) {
	p.stageDuration.WithLabelValues(handler, string(stage)).Observe(d.Seconds())
}

// ObservePublished counts published bytes per destination.
func (p *Prometheus) ObservePublished(handler string, dest domain.Destination, bytes int64) {
	p.published.WithLabelValues(handler, string(dest)).Add(float64(bytes))
}

// WriteTextfile writes all metrics to path atomically.
func (p *Prometheus) WriteTextfile(path string, now time.Time) error {
	p.lastRun.Set(float64(now.Unix()))
	return prometheus.WriteToTextfile(path, p.registry)
}
