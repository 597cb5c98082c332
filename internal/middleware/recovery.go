package middleware

import (
	"net/http"

	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/contextutil"
	"hrms-lite/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery answers a panicking handler with the standard 500 envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		contextutil.GetLogger(c.Request.Context(), logger).Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)
		response.Abort(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message)
	})
}
