package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements Recorder backed by Prometheus
type PrometheusRecorder struct {
	created      *prometheus.CounterVec
	deleted      *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	unfilled     prometheus.Counter
	undoRestored prometheus.Counter
	undoSkipped  prometheus.Counter
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheus registers the allocation metrics on reg (the default
// registerer when nil) under namespace ("examalloc" when empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "examalloc"
	}
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignments",
			Name:      "created_total",
			Help:      "Assignments created, by source.",
		}, []string{"source"}),
		deleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignments",
			Name:      "deleted_total",
			Help:      "Assignments deleted, by scope.",
		}, []string{"scope"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auto_assign",
			Name:      "runs_total",
			Help:      "Auto-assign runs, by outcome.",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "auto_assign",
			Name:      "duration_seconds",
			Help:      "Wall time of auto-assign runs including persistence.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		unfilled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auto_assign",
			Name:      "unfilled_students_total",
			Help:      "Students left below target by auto-assign runs.",
		}),
		undoRestored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "undo",
			Name:      "restored_total",
			Help:      "Snapshot entries restored by undo.",
		}),
		undoSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "undo",
			Name:      "skipped_total",
			Help:      "Snapshot entries that could not be restored.",
		}),
	}
}

func (p *PrometheusRecorder) AssignmentsCreated(source string, n int) {
	if n > 0 {
		p.created.WithLabelValues(source).Add(float64(n))
	}
}

func (p *PrometheusRecorder) AssignmentsDeleted(scope string, n int64) {
	if n > 0 {
		p.deleted.WithLabelValues(scope).Add(float64(n))
	}
}

func (p *PrometheusRecorder) AutoAssignRun(outcome string, unfilled int, elapsed time.Duration) {
	p.runs.WithLabelValues(outcome).Inc()
	p.runDuration.Observe(elapsed.Seconds())
	if unfilled > 0 {
		p.unfilled.Add(float64(unfilled))
	}
}

func (p *PrometheusRecorder) UndoCompleted(restored, skipped int) {
	p.undoRestored.Add(float64(restored))
	p.undoSkipped.Add(float64(skipped))
}
