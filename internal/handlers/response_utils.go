package handlers

import (
	"github.com/gin-gonic/gin"

	"metadata-repository/internal/logging"
	"metadata-repository/internal/models"
)

// RespondWithError writes an APIError body and stores the code on the
// context so the request log line carries it.
func RespondWithError(c *gin.Context, httpStatus int, appErrorCode string, message string, details interface{}) {
	c.Set(logging.ErrorCodeKey, appErrorCode)
	c.AbortWithStatusJSON(httpStatus, models.APIError{
		Code:    appErrorCode,
		Message: message,
		Details: details,
	})
}

// RespondWithSuccess writes data as JSON, or only the status when data is nil.
func RespondWithSuccess(c *gin.Context, httpStatus int, data interface{}) {
	if data == nil {
		c.Status(httpStatus)
		return
	}
	c.JSON(httpStatus, data)
}
