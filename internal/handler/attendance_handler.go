package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/colegio-sanjuan/portal-api/internal/middleware"
	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/service"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
	"github.com/colegio-sanjuan/portal-api/pkg/response"
)

// AttendanceHandler serves arrival registration and justification.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	cache      *service.CacheService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(attendance *service.AttendanceService, cache *service.CacheService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, cache: cache}
}

// Register records one student arrival.
func (h *AttendanceHandler) Register(c *gin.Context) {
	var req service.RegisterArrivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid arrival payload"))
		return
	}
	if claims, ok := middleware.CurrentUser(c); ok {
		req.RecordedBy = claims.UserID
	}
	record, err := h.attendance.RegisterArrival(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateReports(c)
	response.Created(c, record)
}

type justifyRequest struct {
	Justification models.Justification `json:"justification" binding:"required"`
}

// Justify applies the justification transition on an attendance record.
func (h *AttendanceHandler) Justify(c *gin.Context) {
	var req justifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid justification payload"))
		return
	}
	record, err := h.attendance.Justify(c.Request.Context(), c.Param("id"), req.Justification)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateReports(c)
	response.OK(c, record)
}

func (h *AttendanceHandler) invalidateReports(c *gin.Context) {
	if h.cache == nil {
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "report:attendance*")
}
