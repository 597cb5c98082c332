package dashboard

import (
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/response"
	"net/http"
	"strconv"

	dashboarderrors "hrms-lite/internal/dashboard/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("dashboard.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Get(c *gin.Context) {
	days := DefaultDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(c, dashboarderrors.ErrInvalidDays)
			return
		}
		days = n
	}

	resp, err := h.service.Snapshot(c.Request.Context(), days)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, "")
}

func (h *Handler) writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("dashboard request failed", zap.Error(err))
	} else {
		h.logger.Warn("dashboard request rejected", zap.String("days", c.Query("days")))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}
