package allocation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yigit/examalloc/internal/app/models"
	"github.com/yigit/examalloc/internal/pkg/apperrors"
)

func intPtr(v int) *int { return &v }

func TestAnnotate(t *testing.T) {
	t.Run("uses default capacity when unset", func(t *testing.T) {
		stat, err := Annotate(models.Examiner{ID: 1, CurrentLoad: 5}, 25)

		require.NoError(t, err)
		require.Equal(t, 25, stat.Capacity)
		require.Equal(t, 20, stat.AvailableSlots)
		require.False(t, stat.IsFull)
		require.Equal(t, 20, stat.LoadPercentage)
	})

	t.Run("floors available slots at zero when over capacity", func(t *testing.T) {
		stat, err := Annotate(models.Examiner{ID: 1, Capacity: intPtr(3), CurrentLoad: 4}, 25)

		require.NoError(t, err)
		require.Equal(t, 0, stat.AvailableSlots)
		require.True(t, stat.IsFull)
		require.Equal(t, 133, stat.LoadPercentage)
	})

	t.Run("rounds load percentage", func(t *testing.T) {
		stat, err := Annotate(models.Examiner{ID: 1, Capacity: intPtr(3), CurrentLoad: 2}, 25)

		require.NoError(t, err)
		require.Equal(t, 67, stat.LoadPercentage)
	})

	t.Run("rejects zero capacity", func(t *testing.T) {
		_, err := Annotate(models.Examiner{ID: 9, Capacity: intPtr(0)}, 25)

		require.ErrorIs(t, err, apperrors.ErrInvalidCapacity)
	})
}

func TestCalculate(t *testing.T) {
	examiners := []models.Examiner{
		{ID: 1, Name: "a", Capacity: intPtr(10), CurrentLoad: 10},
		{ID: 2, Name: "b", CurrentLoad: 3},
		{ID: 3, Name: "c", Capacity: intPtr(5), CurrentLoad: 0},
	}

	report, err := Calculate(examiners, 25)

	require.NoError(t, err)
	require.Len(t, report.Examiners, 3)
	require.Equal(t, int64(1), report.Examiners[0].ExaminerID)
	require.Equal(t, int64(3), report.Examiners[2].ExaminerID)
	require.Equal(t, CapacitySummary{
		TotalExaminers:     3,
		FullExaminers:      1,
		AvailableExaminers: 2,
		TotalCapacity:      40,
		TotalLoad:          13,
	}, report.Summary)

	t.Run("empty roster", func(t *testing.T) {
		report, err := Calculate(nil, 25)

		require.NoError(t, err)
		require.Empty(t, report.Examiners)
		require.Zero(t, report.Summary.TotalExaminers)
	})

	t.Run("propagates invalid capacity", func(t *testing.T) {
		_, err := Calculate([]models.Examiner{{ID: 1}}, 0)

		require.ErrorIs(t, err, apperrors.ErrInvalidCapacity)
	})
}
