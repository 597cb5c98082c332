package response

import (
	"github.com/gin-gonic/gin"
)

// ApiEnvelope is the shape of every JSON body the API returns.
type ApiEnvelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// dataEnvelope always carries "data", so an empty list is sent as [].
type dataEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

func Success(c *gin.Context, status int, data any, message string) {
	if data == nil {
		c.JSON(status, ApiEnvelope{Success: true, Message: message})
		return
	}
	c.JSON(status, dataEnvelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, errors any) {
	c.JSON(status, ApiEnvelope{
		Success: false,
		Code:    errorCode,
		Message: message,
		Errors:  errors,
	})
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, errorCode string, message string) {
	c.AbortWithStatusJSON(status, ApiEnvelope{
		Success: false,
		Code:    errorCode,
		Message: message,
	})
}
