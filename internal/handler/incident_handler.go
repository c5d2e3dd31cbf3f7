package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colegio-sanjuan/portal-api/internal/middleware"
	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/service"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
	"github.com/colegio-sanjuan/portal-api/pkg/response"
)

// IncidentHandler serves incident registration and lifecycle endpoints.
type IncidentHandler struct {
	incidents *service.IncidentService
	cache     *service.CacheService
}

// NewIncidentHandler constructs the handler.
func NewIncidentHandler(incidents *service.IncidentService, cache *service.CacheService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents, cache: cache}
}

// Register records a new incident.
func (h *IncidentHandler) Register(c *gin.Context) {
	var req service.RegisterIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid incident payload"))
		return
	}
	if claims, ok := middleware.CurrentUser(c); ok {
		req.RegisteredBy = claims.UserID
	}
	incident, err := h.incidents.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateReports(c)
	response.Created(c, incident)
}

type incidentStatusRequest struct {
	Status models.IncidentStatus `json:"status" binding:"required"`
}

// SetStatus transitions an incident to justified or annulled.
func (h *IncidentHandler) SetStatus(c *gin.Context) {
	var req incidentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	incident, err := h.incidents.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateReports(c)
	response.OK(c, incident)
}

// List returns incidents matching the query filters.
func (h *IncidentHandler) List(c *gin.Context) {
	filter := models.IncidentFilter{
		Level:    models.EducationLevel(c.Query("level")),
		Grade:    c.Query("grade"),
		Section:  c.Query("section"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 50),
	}
	if from, ok := dateQuery(c, "date_from"); ok {
		filter.DateFrom = &from
	}
	if to, ok := dateQuery(c, "date_to"); ok {
		filter.DateTo = &to
	}
	if status := models.IncidentStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown incident status"))
			return
		}
		filter.StatusIn = []models.IncidentStatus{status}
	}
	incidents, err := h.incidents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, incidents)
}

// ListFaults returns the fault catalog.
func (h *IncidentHandler) ListFaults(c *gin.Context) {
	faults, err := h.incidents.ListFaults(c.Request.Context(), c.Query("active") != "false")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, faults)
}

func (h *IncidentHandler) invalidateReports(c *gin.Context) {
	if h.cache == nil {
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "report:incidents*")
}

func dateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
