package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/examalloc/internal/app/models/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by the name clients send
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// ValidateRequest binds the JSON body into obj and validates it. On failure the
// error response is written and false is returned.
func ValidateRequest(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		errorDetail = errorDetail.WithDetails(err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewFailureResponse(errorDetail))
		return false
	}
	return validateStruct(c, obj)
}

// ValidateQuery binds query parameters into obj and validates it
func ValidateQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters")
		errorDetail = errorDetail.WithDetails(err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewFailureResponse(errorDetail))
		return false
	}
	return validateStruct(c, obj)
}

func validateStruct(c *gin.Context, obj interface{}) bool {
	if err := validate.Struct(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewFailureResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}
