package models

// Examiner is an instructor seen from the allocation side: a capacity and the
// number of students currently assigned to them.
type Examiner struct {
	ID          int64  `json:"id" db:"id"`                       // User ID of the examiner
	Name        string `json:"name" db:"name"`                   // Display name
	Email       string `json:"email" db:"email"`                 // Contact email
	Capacity    *int   `json:"capacity,omitempty" db:"capacity"` // Nil means the system default applies
	CurrentLoad int    `json:"currentLoad" db:"current_load"`    // Number of active assignments
}

// EffectiveCapacity returns the examiner's own capacity, or def when none is set.
func (e *Examiner) EffectiveCapacity(def int) int {
	if e.Capacity == nil {
		return def
	}
	return *e.Capacity
}
