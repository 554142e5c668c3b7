package dto

// ValidateAssignmentRequest asks whether a batch of students fits an examiner
type ValidateAssignmentRequest struct {
	ExaminerID int64   `json:"examinerId" validate:"required,gt=0"`
	StudentIDs []int64 `json:"studentIds" validate:"required,min=1,dive,gt=0"`
}

// ManualAssignRequest creates one assignment
type ManualAssignRequest struct {
	StudentID  int64 `json:"studentId" validate:"required,gt=0"`
	ExaminerID int64 `json:"examinerId" validate:"required,gt=0"`
}

// UpdateCapacityRequest changes an examiner's capacity
type UpdateCapacityRequest struct {
	Capacity int `json:"capacity" validate:"required,gt=0"`
}

// AssignmentQuery narrows the assignment listing
type AssignmentQuery struct {
	ExaminerID int64 `form:"examinerId" validate:"omitempty,gt=0"`
	StudentID  int64 `form:"studentId" validate:"omitempty,gt=0"`
}
