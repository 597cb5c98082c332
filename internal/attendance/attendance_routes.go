package attendance

import (
	"hrms-lite/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, writes ...gin.HandlerFunc) {
	attendance := r.Group("/attendance")
	{
		attendance.GET("", h.GetAll)
		attendance.GET("/employee/:employeeId", h.GetByEmployee)
		attendance.GET("/summary/:employeeId", h.Summary)
		attendance.POST("", middleware.Chain(writes, h.Create)...)
		attendance.PUT("/:id", middleware.Chain(writes, h.Update)...)
		attendance.DELETE("/:id", middleware.Chain(writes, h.Delete)...)
	}
}
