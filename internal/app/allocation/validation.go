package allocation

// Verdict is the answer of the validation gate together with the figures it
// was decided on
type Verdict struct {
	Valid          bool  `json:"valid"`
	ExaminerID     int64 `json:"examinerId"`
	CurrentLoad    int   `json:"currentLoad"`
	Capacity       int   `json:"capacity"`
	AvailableSlots int   `json:"availableSlots"`
	Requested      int   `json:"requested"`
	NewTotal       *int  `json:"newTotal,omitempty"`
	// AlreadyAssigned counts proposed students that already hold this
	// examiner and were left out of Requested.
	AlreadyAssigned int `json:"alreadyAssigned"`
}

// Validate reports whether requested more students fit within the examiner's
// capacity. It never mutates anything.
func Validate(stat CapacityStat, requested int) Verdict {
	v := Verdict{
		ExaminerID:     stat.ExaminerID,
		CurrentLoad:    stat.CurrentLoad,
		Capacity:       stat.Capacity,
		AvailableSlots: stat.AvailableSlots,
		Requested:      requested,
	}
	if stat.CurrentLoad+requested <= stat.Capacity {
		total := stat.CurrentLoad + requested
		v.Valid = true
		v.NewTotal = &total
	}
	return v
}
