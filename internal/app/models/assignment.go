package models

import "time"

// Assignment is a persisted (student, examiner) edge
type Assignment struct {
	ID         int64     `json:"id" db:"id"`
	StudentID  int64     `json:"studentId" db:"student_id"`
	ExaminerID int64     `json:"examinerId" db:"examiner_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// AssignmentFilter narrows an assignment listing. Zero values mean "any".
type AssignmentFilter struct {
	ExaminerID int64
	StudentID  int64
}
