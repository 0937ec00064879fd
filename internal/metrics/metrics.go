// Package metrics records segmentation runs in a Prometheus registry that
// the CLI exports as a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/provmap/shapefinder"
)

// Run outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeCanceled = "canceled"
	OutcomeError    = "error"
)

// Recorder owns the registry and the run metrics.
type Recorder struct {
	Registry *prometheus.Registry

	runs         *prometheus.CounterVec
	duration     prometheus.Histogram
	shapes       prometheus.Gauge
	borderPixels prometheus.Gauge
	warnings     *prometheus.CounterVec
	stageSeconds *prometheus.HistogramVec
}

// New registers the run metrics in a fresh registry.
func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provmap_runs_total",
			Help: "Segmentation runs by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "provmap_run_duration_seconds",
			Help:    "Wall time of a segmentation run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		shapes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "provmap_shapes",
			Help: "Shapes found by the last run",
		}),
		borderPixels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "provmap_border_pixels",
			Help: "Border pixels merged by the last run",
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provmap_warnings_total",
			Help: "Soft warnings by kind",
		}, []string{"kind"}),
		stageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "provmap_output_seconds",
			Help:    "Time spent writing each output file",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"file"}),
	}
	r.Registry.MustRegister(r.runs, r.duration, r.shapes, r.borderPixels, r.warnings, r.stageSeconds)

	return r
}

// ObserveRun records one segmentation run.
func (r *Recorder) ObserveRun(outcome string, d time.Duration, shapes, borderPixels int, rep shapefinder.Report) {
	r.runs.WithLabelValues(outcome).Inc()
	r.duration.Observe(d.Seconds())
	if outcome != OutcomeOK {
		return
	}
	r.shapes.Set(float64(shapes))
	r.borderPixels.Set(float64(borderPixels))
	r.warnings.WithLabelValues("color_mismatch").Add(float64(rep.ColorMismatches))
	r.warnings.WithLabelValues("undersized").Add(float64(rep.Undersized))
	r.warnings.WithLabelValues("oversized").Add(float64(rep.Oversized))
}

// ObserveOutput records the time spent writing file.
func (r *Recorder) ObserveOutput(file string, d time.Duration) {
	r.stageSeconds.WithLabelValues(file).Observe(d.Seconds())
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
