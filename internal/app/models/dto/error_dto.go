package dto

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Resource errors
	ErrorCodeResourceNotFound ErrorCode = "RES_001"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Allocation errors
	ErrorCodeInsufficientExaminers ErrorCode = "ALLOC_001"
	ErrorCodeNotAnExaminer         ErrorCode = "ALLOC_002"
	ErrorCodeAlreadyAssigned       ErrorCode = "ALLOC_003"
	ErrorCodeStudentAtTarget       ErrorCode = "ALLOC_004"
	ErrorCodeExaminerAtCapacity    ErrorCode = "ALLOC_005"
	ErrorCodeBelowCurrentLoad      ErrorCode = "ALLOC_006"
	ErrorCodeCapacityOutOfRange    ErrorCode = "ALLOC_007"
	ErrorCodeInvalidCapacity       ErrorCode = "ALLOC_008"
	ErrorCodeNothingToUndo         ErrorCode = "ALLOC_009"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

// Severity levels
const (
	ErrorSeverityInfo     ErrorSeverity = "INFO"
	ErrorSeverityWarning  ErrorSeverity = "WARNING"
	ErrorSeverityError    ErrorSeverity = "ERROR"
	ErrorSeverityCritical ErrorSeverity = "CRITICAL"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code     ErrorCode     `json:"code"`
	Message  string        `json:"message"`
	Field    string        `json:"field,omitempty"`
	Severity ErrorSeverity `json:"severity"`
	Details  interface{}   `json:"details,omitempty"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:     code,
		Message:  message,
		Severity: ErrorSeverityError,
	}
}

// WithField adds a field name to the error detail
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error
func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails adds additional details to the error
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ErrorDetail `json:"errors"`
}

// NewValidationErrors creates a new validation errors container
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ErrorDetail, 0),
	}
}

// AddError adds a validation error to the container
func (v *ValidationErrors) AddError(field, message string) *ValidationErrors {
	v.Errors = append(v.Errors, ErrorDetail{
		Code:     ErrorCodeValidationFailed,
		Message:  message,
		Field:    field,
		Severity: ErrorSeverityError,
	})
	return v
}

// HasErrors checks if there are any validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}
