package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/examalloc/internal/app/models"
	"github.com/yigit/examalloc/internal/app/models/dto"
	"github.com/yigit/examalloc/internal/app/services"
	"github.com/yigit/examalloc/internal/middleware"
	"github.com/yigit/examalloc/internal/pkg/helpers"
)

// AllocationController exposes the examiner allocation operations
type AllocationController struct {
	allocationService services.AllocationService
}

// NewAllocationController creates a new allocation controller
func NewAllocationController(allocationService services.AllocationService) *AllocationController {
	return &AllocationController{
		allocationService: allocationService,
	}
}

// GetCapacityReport returns capacity figures for every examiner
func (c *AllocationController) GetCapacityReport(ctx *gin.Context) {
	report, err := c.allocationService.GetCapacityReport(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, "Capacity report retrieved successfully"))
}

// RunAutoAssign gives every student the required number of examiners
func (c *AllocationController) RunAutoAssign(ctx *gin.Context) {
	result, err := c.allocationService.RunAutoAssign(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Auto-assign completed"
	if len(result.Unfilled) > 0 {
		message = "Auto-assign completed, some students could not be fully assigned"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, message))
}

// ValidateAssignment checks whether students fit within an examiner's capacity
func (c *AllocationController) ValidateAssignment(ctx *gin.Context) {
	var req dto.ValidateAssignmentRequest
	if !middleware.ValidateRequest(ctx, &req) {
		return
	}

	verdict, err := c.allocationService.ValidateAssignment(ctx.Request.Context(), req.ExaminerID, req.StudentIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(verdict, "Validation completed"))
}

// ListAssignments lists current assignments
func (c *AllocationController) ListAssignments(ctx *gin.Context) {
	var query dto.AssignmentQuery
	if !middleware.ValidateQuery(ctx, &query) {
		return
	}

	assignments, err := c.allocationService.ListAssignments(ctx.Request.Context(), models.AssignmentFilter{
		ExaminerID: query.ExaminerID,
		StudentID:  query.StudentID,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignments, "Assignments retrieved successfully"))
}

// ManualAssign assigns one examiner to one student
func (c *AllocationController) ManualAssign(ctx *gin.Context) {
	var req dto.ManualAssignRequest
	if !middleware.ValidateRequest(ctx, &req) {
		return
	}

	assignment, err := c.allocationService.ManualAssign(ctx.Request.Context(), req.StudentID, req.ExaminerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(assignment, "Assignment created"))
}

// RemoveAssignment deletes one assignment
func (c *AllocationController) RemoveAssignment(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.allocationService.RemoveAssignment(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Assignment removed"))
}

// ResetAll removes every assignment
func (c *AllocationController) ResetAll(ctx *gin.Context) {
	result, err := c.allocationService.ResetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Assignments reset"))
}

// ResetExaminer removes every assignment of one examiner
func (c *AllocationController) ResetExaminer(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.allocationService.ResetExaminer(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Examiner assignments reset"))
}

// UpdateExaminerCapacity changes an examiner's capacity
func (c *AllocationController) UpdateExaminerCapacity(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateCapacityRequest
	if !middleware.ValidateRequest(ctx, &req) {
		return
	}

	examiner, err := c.allocationService.UpdateExaminerCapacity(ctx.Request.Context(), id, req.Capacity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(examiner, "Capacity updated"))
}

// UndoLastReset restores the assignments removed by the last reset
func (c *AllocationController) UndoLastReset(ctx *gin.Context) {
	result, err := c.allocationService.UndoLastReset(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Reset undone"
	if result.Skipped > 0 {
		message = "Reset partially undone"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, message))
}

// GetUndoStatus reports whether a reset can be undone
func (c *AllocationController) GetUndoStatus(ctx *gin.Context) {
	status := c.allocationService.GetUndoStatus(ctx.Request.Context())
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(status, "Undo status retrieved"))
}
