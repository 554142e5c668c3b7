package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// HandleValidationError converts a validator error into an error detail listing
// every failing field
func HandleValidationError(err error) *ErrorDetail {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(err.Error())
	}

	verrs := NewValidationErrors()
	for _, fe := range fieldErrors {
		verrs.AddError(fe.Field(), formatValidationError(fe))
	}

	detail := NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(verrs.Errors)
	if len(verrs.Errors) == 1 {
		detail = detail.WithField(verrs.Errors[0].Field)
	}
	return detail
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "unique":
		return e.Field() + " must not contain duplicates"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
