package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
)

// Roster errors
var (
	ErrExaminerNotFound = errors.New("examiner not found")
	ErrNotAnExaminer    = errors.New("user is not an examiner")
	ErrStudentNotFound  = errors.New("student not found")
	ErrInvalidCapacity  = errors.New("examiner capacity must be greater than zero")
)

// Assignment errors
var (
	ErrInsufficientExaminers = errors.New("not enough examiners with free capacity")
	ErrAssignmentNotFound    = errors.New("assignment not found")
	ErrDuplicateEdge         = errors.New("assignment for this student and examiner already exists")
	ErrAlreadyAssigned       = errors.New("examiner is already assigned to this student")
	ErrStudentAtTarget       = errors.New("student already has the required number of examiners")
	ErrExaminerAtCapacity    = errors.New("examiner has no free capacity")
)

// Capacity errors
var (
	ErrBelowCurrentLoad   = errors.New("capacity cannot be lower than the examiner's current load")
	ErrCapacityOutOfRange = errors.New("capacity is outside the allowed range")
)

// Undo errors
var (
	ErrNothingToUndo = errors.New("nothing to undo")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// DetailsOf returns the details attached to the first CustomError in err's chain.
func DetailsOf(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}
