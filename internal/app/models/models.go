package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent    RoleType = "STUDENT"
	RoleInstructor RoleType = "INSTRUCTOR" // examiners are instructors
	RoleAdmin      RoleType = "ADMIN"
)

// DefaultTargetExaminers is the number of examiners every student is expected to have.
const DefaultTargetExaminers = 2
