package models

// Student defines the student view used by the allocation engine
type Student struct {
	ID                  int64   `json:"id" db:"id"`
	Name                string  `json:"name" db:"name"`
	Identifier          string  `json:"identifier" db:"identifier"`                     // Student number
	AssignedExaminerIDs []int64 `json:"assignedExaminerIds" db:"assigned_examiner_ids"` // In assignment order
}

// HasExaminer reports whether examinerID is already assigned to the student.
func (s *Student) HasExaminer(examinerID int64) bool {
	for _, id := range s.AssignedExaminerIDs {
		if id == examinerID {
			return true
		}
	}
	return false
}
