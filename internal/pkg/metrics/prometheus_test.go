package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheus(reg, "test")

	rec.AssignmentsCreated(SourceAuto, 4)
	rec.AssignmentsCreated(SourceManual, 1)
	rec.AssignmentsCreated(SourceUndo, 0)
	rec.AssignmentsDeleted(ScopeAll, 10)
	rec.AutoAssignRun(OutcomeSuccess, 2, 30*time.Millisecond)
	rec.AutoAssignRun(OutcomeNoop, 0, time.Millisecond)
	rec.UndoCompleted(9, 1)

	require.Equal(t, 4.0, testutil.ToFloat64(rec.created.WithLabelValues(SourceAuto)))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.created.WithLabelValues(SourceManual)))
	require.Equal(t, 10.0, testutil.ToFloat64(rec.deleted.WithLabelValues(ScopeAll)))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues(OutcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues(OutcomeNoop)))
	require.Equal(t, 2.0, testutil.ToFloat64(rec.unfilled))
	require.Equal(t, 9.0, testutil.ToFloat64(rec.undoRestored))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.undoSkipped))

	count, err := testutil.GatherAndCount(reg, "test_auto_assign_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestNopRecorder(t *testing.T) {
	var rec Recorder = NewNop()

	require.NotPanics(t, func() {
		rec.AssignmentsCreated(SourceAuto, 1)
		rec.AssignmentsDeleted(ScopeSingle, 1)
		rec.AutoAssignRun(OutcomeError, 0, 0)
		rec.UndoCompleted(0, 0)
	})
}
