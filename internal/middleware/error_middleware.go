package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/examalloc/internal/app/models/dto"
	"github.com/yigit/examalloc/internal/pkg/apperrors"
	"github.com/yigit/examalloc/internal/pkg/logger"
)

// apiError describes how one sentinel is presented to clients
type apiError struct {
	target   error
	status   int
	code     dto.ErrorCode
	message  string
	severity dto.ErrorSeverity
}

// errorTable is matched in order, the more specific sentinels come first
var errorTable = []apiError{
	{apperrors.ErrInsufficientExaminers, http.StatusUnprocessableEntity, dto.ErrorCodeInsufficientExaminers, "Not enough examiners with free capacity", dto.ErrorSeverityWarning},
	{apperrors.ErrExaminerNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Examiner not found", dto.ErrorSeverityError},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found", dto.ErrorSeverityError},
	{apperrors.ErrAssignmentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Assignment not found", dto.ErrorSeverityError},
	{apperrors.ErrNotAnExaminer, http.StatusUnprocessableEntity, dto.ErrorCodeNotAnExaminer, "User is not an examiner", dto.ErrorSeverityError},
	{apperrors.ErrAlreadyAssigned, http.StatusConflict, dto.ErrorCodeAlreadyAssigned, "Student already has this examiner", dto.ErrorSeverityWarning},
	{apperrors.ErrDuplicateEdge, http.StatusConflict, dto.ErrorCodeAlreadyAssigned, "Student already has this examiner", dto.ErrorSeverityWarning},
	{apperrors.ErrStudentAtTarget, http.StatusConflict, dto.ErrorCodeStudentAtTarget, "Student already has the required number of examiners", dto.ErrorSeverityWarning},
	{apperrors.ErrExaminerAtCapacity, http.StatusConflict, dto.ErrorCodeExaminerAtCapacity, "Examiner has no free capacity", dto.ErrorSeverityWarning},
	{apperrors.ErrBelowCurrentLoad, http.StatusConflict, dto.ErrorCodeBelowCurrentLoad, "Capacity cannot be lower than the current number of assignments", dto.ErrorSeverityWarning},
	{apperrors.ErrCapacityOutOfRange, http.StatusBadRequest, dto.ErrorCodeCapacityOutOfRange, "Capacity is out of the allowed range", dto.ErrorSeverityError},
	{apperrors.ErrInvalidCapacity, http.StatusInternalServerError, dto.ErrorCodeInvalidCapacity, "Stored examiner capacity is invalid", dto.ErrorSeverityCritical},
	{apperrors.ErrNothingToUndo, http.StatusConflict, dto.ErrorCodeNothingToUndo, "There is no reset to undo", dto.ErrorSeverityInfo},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", dto.ErrorSeverityError},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", dto.ErrorSeverityError},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, e := range errorTable {
		if !errors.Is(err, e.target) {
			continue
		}

		detail := dto.NewErrorDetail(e.code, e.message).WithSeverity(e.severity)
		if details := apperrors.DetailsOf(err); len(details) > 0 {
			detail = detail.WithDetails(details)
		} else if err.Error() != e.target.Error() {
			detail = detail.WithDetails(err.Error())
		}
		if e.status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		}
		c.JSON(e.status, dto.NewFailureResponse(detail))
		return
	}

	// Handle unknown errors
	logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.NewFailureResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
	))
}
