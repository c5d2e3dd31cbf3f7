package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colegio-sanjuan/portal-api/internal/service"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
	"github.com/colegio-sanjuan/portal-api/pkg/response"
)

// AdminHandler serves director-only configuration and observability
// endpoints.
type AdminHandler struct {
	configuration *service.ConfigurationService
	metrics       *service.MetricsService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(configuration *service.ConfigurationService, metrics *service.MetricsService) *AdminHandler {
	return &AdminHandler{configuration: configuration, metrics: metrics}
}

type cutoffRequest struct {
	Cutoff string `json:"cutoff" binding:"required"`
}

// SetArrivalCutoff updates the HH:MM cutoff used to classify new arrivals.
// Existing records keep the status stored at registration time.
func (h *AdminHandler) SetArrivalCutoff(c *gin.Context) {
	var req cutoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid cutoff payload"))
		return
	}
	if _, err := time.Parse("15:04", req.Cutoff); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "cutoff must be HH:MM"))
		return
	}
	if err := h.configuration.SetArrivalCutoff(c.Request.Context(), req.Cutoff); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats returns an aggregated metrics snapshot.
func (h *AdminHandler) Stats(c *gin.Context) {
	response.OK(c, h.metrics.Snapshot())
}
