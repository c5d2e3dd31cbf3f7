package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/colegio-sanjuan/portal-api/internal/dto"
	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/report"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
)

type cohortLister interface {
	ListCohort(ctx context.Context, filter models.CohortFilter, activeOnly bool) ([]models.Student, error)
}

type attendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

type incidentLister interface {
	List(ctx context.Context, filter models.IncidentFilter) ([]models.IncidentRecord, error)
}

// ReportService is the reporting facade: it resolves the period, fetches
// the cohort and records in a single pass, runs the computational engine
// and returns plain result structures. It never mutates store state and
// holds no state between calls; concurrent report requests are independent.
type ReportService struct {
	students   cohortLister
	attendance attendanceLister
	incidents  incidentLister
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	calendar   *report.AcademicCalendar
	loc        *time.Location
}

// ReportServiceParams groups constructor dependencies.
type ReportServiceParams struct {
	Students   cohortLister
	Attendance attendanceLister
	Incidents  incidentLister
	Cache      *CacheService
	Metrics    *MetricsService
	Logger     *zap.Logger
	Calendar   *report.AcademicCalendar
	Location   *time.Location
}

// NewReportService constructs the reporting facade.
func NewReportService(params ReportServiceParams) *ReportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	calendar := params.Calendar
	if calendar == nil {
		year := time.Now().In(loc).Year()
		calendar = report.DefaultAcademicCalendar(year-1, year, year+1)
	}
	return &ReportService{
		students:   params.Students,
		attendance: params.Attendance,
		incidents:  params.Incidents,
		cache:      params.Cache,
		metrics:    params.Metrics,
		logger:     logger,
		calendar:   calendar,
		loc:        loc,
	}
}

// BuildAttendanceReport resolves the period, fetches the cohort and its
// arrival records, and builds the per-student daily matrix. The boolean
// indicates whether the payload originated from cache.
func (s *ReportService) BuildAttendanceReport(ctx context.Context, period report.Period, filter models.CohortFilter) (*dto.AttendanceReport, bool, error) {
	rng, err := report.ResolvePeriod(period, s.calendar, s.loc)
	if err != nil {
		return nil, false, err
	}

	cacheKey := makeReportCacheKey("attendance",
		keyPart{"kind", string(period.Kind)},
		keyPart{"year", fmt.Sprintf("%d", period.Year)},
		keyPart{"month", fmt.Sprintf("%d", period.Month)},
		keyPart{"school_year", fmt.Sprintf("%d", period.SchoolYear)},
		keyPart{"bimester", fmt.Sprintf("%d", period.Bimester)},
		keyPart{"level", string(filter.Level)},
		keyPart{"grade", filter.Grade},
		keyPart{"section", filter.Section})
	var cached dto.AttendanceReport
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	students, err := s.students.ListCohort(ctx, filter, true)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, fmt.Sprintf("fetch cohort: %v", err))
	}

	var records []models.AttendanceRecord
	if len(students) > 0 {
		ids := make([]string, len(students))
		for i, st := range students {
			ids[i] = st.ID
		}
		records, err = s.attendance.List(ctx, models.AttendanceFilter{
			StudentIDs: ids,
			DateFrom:   &rng.Start,
			DateTo:     &rng.End,
		})
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, fmt.Sprintf("fetch attendance records: %v", err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("report_attendance", time.Since(start))
	}

	matrix := report.BuildMatrix(students, rng, report.IndexRecords(records, rng))
	result := &dto.AttendanceReport{
		Period: period,
		Range:  matrix.Range,
		Rows:   matrix.Rows,
		Totals: matrix.Totals,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, 0); err != nil {
			s.logger.Warn("cache attendance report", zap.Error(err))
		}
	}
	return result, false, nil
}

// BuildIncidentSummary fetches active incidents matching the filter and
// computes grouped statistics plus the top-fault ranking. The boolean
// indicates cache utilisation.
func (s *ReportService) BuildIncidentSummary(ctx context.Context, filter models.CohortFilter, dateFrom, dateTo *time.Time) (*dto.IncidentSummary, bool, error) {
	cacheKey := makeReportCacheKey("incidents",
		keyPart{"level", string(filter.Level)},
		keyPart{"grade", filter.Grade},
		keyPart{"section", filter.Section},
		keyPart{"from", formatTime(dateFrom)},
		keyPart{"to", formatTime(dateTo)})
	var cached dto.IncidentSummary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	incidents, err := s.incidents.List(ctx, models.IncidentFilter{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Level:    filter.Level,
		Grade:    filter.Grade,
		Section:  filter.Section,
		StatusIn: []models.IncidentStatus{models.IncidentActive},
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, fmt.Sprintf("fetch incidents: %v", err))
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("report_incidents", time.Since(start))
	}

	byGrade, skippedGrade := report.AggregateIncidents(incidents, report.GroupByGrade)
	bySection, skippedSection := report.AggregateIncidents(incidents, report.GroupBySection)
	skipped := skippedGrade
	if skippedSection > skipped {
		skipped = skippedSection
	}
	if skipped > 0 {
		s.logger.Warn("incidents skipped from grouping due to missing classification",
			zap.Int("skipped", skipped), zap.Int("total", len(incidents)))
	}

	result := &dto.IncidentSummary{
		Filter:         filter,
		ByGrade:        byGrade,
		BySection:      bySection,
		TopFaults:      report.TopFaults(incidents, 5),
		SkippedRecords: skipped,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, 0); err != nil {
			s.logger.Warn("cache incident summary", zap.Error(err))
		}
	}
	return result, false, nil
}

type keyPart struct {
	name  string
	value string
}

// makeReportCacheKey builds a tagged cache key. Every kept part carries its
// field name, so identical values in different fields can never collide;
// empty and zero-valued parts are dropped without losing positional meaning.
func makeReportCacheKey(scope string, parts ...keyPart) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("report:")
	builder.WriteString(scope)
	for _, part := range parts {
		if part.value == "" || part.value == "0" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(part.name)
		builder.WriteByte('=')
		builder.WriteString(strings.ReplaceAll(part.value, ":", "|"))
	}
	return builder.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
