package helpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/examalloc/internal/pkg/apperrors"
)

// ParseIDParam reads a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", apperrors.ErrValidationFailed, name, raw)
	}
	return id, nil
}
