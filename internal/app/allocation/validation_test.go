package allocation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		stat      CapacityStat
		requested int
		valid     bool
	}{
		{"fits", CapacityStat{ExaminerID: 1, Capacity: 25, CurrentLoad: 20, AvailableSlots: 5}, 3, true},
		{"fills exactly", CapacityStat{ExaminerID: 1, Capacity: 25, CurrentLoad: 20, AvailableSlots: 5}, 5, true},
		{"exceeds", CapacityStat{ExaminerID: 1, Capacity: 25, CurrentLoad: 20, AvailableSlots: 5}, 6, false},
		{"already over", CapacityStat{ExaminerID: 1, Capacity: 2, CurrentLoad: 3, AvailableSlots: 0}, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := Validate(tc.stat, tc.requested)

			require.Equal(t, tc.valid, v.Valid)
			require.Equal(t, tc.stat.CurrentLoad, v.CurrentLoad)
			require.Equal(t, tc.stat.Capacity, v.Capacity)
			require.Equal(t, tc.stat.AvailableSlots, v.AvailableSlots)
			require.Equal(t, tc.requested, v.Requested)
			if tc.valid {
				require.NotNil(t, v.NewTotal)
				require.Equal(t, tc.stat.CurrentLoad+tc.requested, *v.NewTotal)
			} else {
				require.Nil(t, v.NewTotal)
			}
		})
	}
}
