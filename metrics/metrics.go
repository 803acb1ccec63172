// Package metrics records pipeline and sandbox measurements in Prometheus.
package metrics

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/deepnoodle-ai/untangle/sandbox"
)

// Namespace prefixes every metric name.
const Namespace = "untangle"

// Recorder implements transform.Recorder and sandbox.Observer.
//
// Metrics:
//   - untangle_pass_changes_total: Tree changes by pass
//   - untangle_pass_duration_seconds: Traversal duration by pass
//   - untangle_pipeline_iterations: Iterations needed per run
//   - untangle_pipeline_runs_total: Runs by convergence
//   - untangle_sandbox_evaluations_total: Decoder evaluations by outcome
//   - untangle_sandbox_evaluation_duration_seconds: Decoder evaluation duration
type Recorder struct {
	registry *prometheus.Registry

	passChanges  *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	iterations   prometheus.Histogram
	runs         *prometheus.CounterVec

	evaluations        *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
}

// NewRecorder creates a Recorder and registers its metrics with registry. A
// new registry is created when registry is nil.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	r := &Recorder{
		registry: registry,
		passChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "pass_changes_total",
				Help:      "Total number of tree changes made by a pass",
			},
			[]string{"pass"},
		),
		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "pass_duration_seconds",
				Help:      "Duration of a single traversal of a pass",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to 2.6s
			},
			[]string{"pass"},
		),
		iterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "pipeline_iterations",
				Help:      "Number of iterations a pipeline run needed",
				Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
			},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "pipeline_runs_total",
				Help:      "Total number of pipeline runs",
			},
			[]string{"converged"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "sandbox_evaluations_total",
				Help:      "Total number of decoder evaluations",
			},
			[]string{"outcome"},
		),
		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "sandbox_evaluation_duration_seconds",
				Help:      "Duration of a decoder evaluation",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to 1.6s
			},
		),
	}
	registry.MustRegister(
		r.passChanges,
		r.passDuration,
		r.iterations,
		r.runs,
		r.evaluations,
		r.evaluationDuration,
	)
	return r
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// PassFinished records one traversal of a pass.
func (r *Recorder) PassFinished(name string, changes int, elapsed time.Duration) {
	r.passChanges.WithLabelValues(name).Add(float64(changes))
	r.passDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// RunFinished records the end of a pipeline run.
func (r *Recorder) RunFinished(iterations int, converged bool) {
	r.iterations.Observe(float64(iterations))
	r.runs.WithLabelValues(strconv.FormatBool(converged)).Inc()
}

// EvaluationFinished records one decoder evaluation. The function name is
// not used as a label since decoder names come from untrusted input.
func (r *Recorder) EvaluationFinished(_ string, elapsed time.Duration, err error) {
	r.evaluations.WithLabelValues(Outcome(err)).Inc()
	r.evaluationDuration.Observe(elapsed.Seconds())
}

// Outcome classifies an evaluation error into a label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sandbox.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, sandbox.ErrNotString):
		return "not_string"
	case errors.Is(err, sandbox.ErrNotFunction):
		return "not_function"
	case errors.Is(err, sandbox.ErrTooLarge):
		return "too_large"
	default:
		return "error"
	}
}

// Write encodes every gathered metric to w in the Prometheus text format.
func (r *Recorder) Write(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
