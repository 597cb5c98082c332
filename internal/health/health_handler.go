// Package health reports whether the API process is up and whether its
// database answers.
package health

import (
	"context"
	"net/http"
	"time"

	"hrms-lite/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Status struct {
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	db     Pinger
	logger *zap.Logger
}

func NewHandler(db Pinger, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("health.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("health.handler")
	}
	return &Handler{db: db, logger: l}
}

// Check always answers 200 while the process runs. A failed ping only flips
// the database field.
func (h *Handler) Check(c *gin.Context) {
	status := Status{Database: "up", Timestamp: time.Now().UTC()}

	if h.db == nil {
		status.Database = "down"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("database ping failed", zap.Error(err))
			status.Database = "down"
		}
	}

	response.Success(c, http.StatusOK, status, "Server is running")
}

func RegisterRoutes(router *gin.Engine, api *gin.RouterGroup, h *Handler) {
	router.GET("/health", h.Check)
	api.GET("/health", h.Check)
}
