package employee

import (
	"hrms-lite/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, writes ...gin.HandlerFunc) {
	employees := r.Group("/employees")
	{
		employees.GET("", handler.GetAll)
		employees.GET("/:id", handler.GetByID)
		employees.POST("", middleware.Chain(writes, handler.Create)...)
		employees.PUT("/:id", middleware.Chain(writes, handler.Update)...)
		employees.DELETE("/:id", middleware.Chain(writes, handler.Delete)...)
	}
}
