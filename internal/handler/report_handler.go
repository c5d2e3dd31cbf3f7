package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/report"
	"github.com/colegio-sanjuan/portal-api/internal/service"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
	"github.com/colegio-sanjuan/portal-api/pkg/response"
)

// ReportHandler serves the attendance matrix and incident statistics
// endpoints, in JSON or as downloadable CSV/PDF documents.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// Attendance builds the per-student daily matrix for the requested period.
// The period is either a calendar month (year + month) or a school bimester
// (school_year + bimester); invalid selectors come back as 400.
func (h *ReportHandler) Attendance(c *gin.Context) {
	period, err := parsePeriod(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := cohortFilter(c)

	payload, cached, err := h.reports.BuildAttendanceReport(c.Request.Context(), period, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "json")
	if format == "json" {
		response.WithMeta(c, payload, map[string]string{"cache": cacheMeta(cached)})
		return
	}
	raw, contentType, err := h.exports.RenderAttendance(payload, service.ExportFormat(format))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("asistencia_%s.%s", payload.Range.Start.Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, contentType, raw)
}

// Incidents builds grouped incident statistics plus the top-fault ranking.
func (h *ReportHandler) Incidents(c *gin.Context) {
	filter := cohortFilter(c)
	var dateFrom, dateTo *time.Time
	if from, ok := dateQuery(c, "date_from"); ok {
		dateFrom = &from
	}
	if to, ok := dateQuery(c, "date_to"); ok {
		dateTo = &to
	}

	payload, cached, err := h.reports.BuildIncidentSummary(c.Request.Context(), filter, dateFrom, dateTo)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "json")
	if format == "json" {
		response.WithMeta(c, payload, map[string]string{"cache": cacheMeta(cached)})
		return
	}
	raw, contentType, err := h.exports.RenderIncidentSummary(payload, service.ExportFormat(format))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("incidencias_%s.%s", time.Now().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, contentType, raw)
}

func parsePeriod(c *gin.Context) (report.Period, error) {
	kind := report.PeriodKind(c.DefaultQuery("period", string(report.PeriodMonth)))
	switch kind {
	case report.PeriodMonth:
		year := intQuery(c, "year", time.Now().Year())
		month := intQuery(c, "month", int(time.Now().Month()))
		return report.Period{Kind: report.PeriodMonth, Year: year, Month: time.Month(month)}, nil
	case report.PeriodBimester:
		schoolYear := intQuery(c, "school_year", time.Now().Year())
		bimester := intQuery(c, "bimester", 0)
		return report.Period{Kind: report.PeriodBimester, SchoolYear: schoolYear, Bimester: bimester}, nil
	default:
		return report.Period{}, appErrors.Clone(appErrors.ErrInvalidPeriod, fmt.Sprintf("unknown period kind %q", kind))
	}
}

func cohortFilter(c *gin.Context) models.CohortFilter {
	return models.CohortFilter{
		Level:   models.EducationLevel(c.Query("level")),
		Grade:   c.Query("grade"),
		Section: c.Query("section"),
	}
}

func cacheMeta(cached bool) string {
	if cached {
		return "hit"
	}
	return "miss"
}
