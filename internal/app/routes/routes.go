package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/examalloc/internal/app/controllers"
	"github.com/yigit/examalloc/internal/app/models/dto"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	allocationController *controllers.AllocationController,
) {
	// API version group
	v1 := router.Group("/api/v1")

	allocation := v1.Group("/allocation")
	{
		allocation.GET("/capacity", allocationController.GetCapacityReport)
		allocation.POST("/auto-assign", allocationController.RunAutoAssign)
		allocation.POST("/validate", allocationController.ValidateAssignment)

		assignments := allocation.Group("/assignments")
		{
			assignments.GET("", allocationController.ListAssignments)
			assignments.POST("", allocationController.ManualAssign)
			assignments.DELETE("/:id", allocationController.RemoveAssignment)
		}

		allocation.POST("/reset", allocationController.ResetAll)

		examiners := allocation.Group("/examiners")
		{
			examiners.POST("/:id/reset", allocationController.ResetExaminer)
			examiners.PUT("/:id/capacity", allocationController.UpdateExaminerCapacity)
		}

		allocation.POST("/undo", allocationController.UndoLastReset)
		allocation.GET("/undo", allocationController.GetUndoStatus)
	}

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})
}

// SetupMetrics exposes a metrics handler on path
func SetupMetrics(router *gin.Engine, path string, handler http.Handler) {
	router.GET(path, gin.WrapH(handler))
}
