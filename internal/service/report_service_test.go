package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/report"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
)

type stubCohortLister struct {
	students []models.Student
	err      error
}

func (s *stubCohortLister) ListCohort(_ context.Context, _ models.CohortFilter, _ bool) ([]models.Student, error) {
	return s.students, s.err
}

type stubAttendanceLister struct {
	records []models.AttendanceRecord
	filter  models.AttendanceFilter
	err     error
}

func (s *stubAttendanceLister) List(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	s.filter = filter
	return s.records, s.err
}

type stubIncidentLister struct {
	incidents []models.IncidentRecord
	filter    models.IncidentFilter
	err       error
}

func (s *stubIncidentLister) List(_ context.Context, filter models.IncidentFilter) ([]models.IncidentRecord, error) {
	s.filter = filter
	return s.incidents, s.err
}

func newTestReportService(students *stubCohortLister, attendance *stubAttendanceLister, incidents *stubIncidentLister) *ReportService {
	return NewReportService(ReportServiceParams{
		Students:   students,
		Attendance: attendance,
		Incidents:  incidents,
		Calendar:   report.DefaultAcademicCalendar(2024),
		Location:   time.UTC,
	})
}

func TestBuildAttendanceReportMonth(t *testing.T) {
	students := &stubCohortLister{students: []models.Student{
		{ID: "s1", FullName: "Benites, Rosa", Active: true},
		{ID: "s2", FullName: "Alvarez, Hugo", Active: true},
	}}
	attendance := &stubAttendanceLister{records: []models.AttendanceRecord{
		{StudentID: "s1", Date: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), ArrivalTime: "07:45", Status: models.AttendanceOnTime},
	}}
	svc := newTestReportService(students, attendance, &stubIncidentLister{})

	result, cached, err := svc.BuildAttendanceReport(context.Background(),
		report.Period{Kind: report.PeriodMonth, Year: 2024, Month: time.February},
		models.CohortFilter{})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 29, result.Range.DayCount)
	require.Len(t, result.Rows, 2)

	// rows come back sorted by full name
	assert.Equal(t, "Alvarez, Hugo", result.Rows[0].Student.FullName)
	assert.Equal(t, "Benites, Rosa", result.Rows[1].Student.FullName)

	assert.Equal(t, 1, result.Totals.OnTime)
	assert.Equal(t, report.CellOnTime, result.Rows[1].Cells[4].Status)

	require.NotNil(t, attendance.filter.DateFrom)
	assert.Equal(t, result.Range.Start, *attendance.filter.DateFrom)
	assert.Equal(t, []string{"s1", "s2"}, attendance.filter.StudentIDs)
}

func TestBuildAttendanceReportEmptyCohortSkipsRecordFetch(t *testing.T) {
	attendance := &stubAttendanceLister{err: errors.New("should not be called")}
	svc := newTestReportService(&stubCohortLister{}, attendance, &stubIncidentLister{})

	result, _, err := svc.BuildAttendanceReport(context.Background(),
		report.Period{Kind: report.PeriodMonth, Year: 2024, Month: time.June},
		models.CohortFilter{})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Equal(t, report.Totals{}, result.Totals)
}

func TestBuildAttendanceReportInvalidPeriod(t *testing.T) {
	svc := newTestReportService(&stubCohortLister{}, &stubAttendanceLister{}, &stubIncidentLister{})

	_, _, err := svc.BuildAttendanceReport(context.Background(),
		report.Period{Kind: report.PeriodBimester, SchoolYear: 2024, Bimester: 5},
		models.CohortFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidPeriod.Code, appErrors.FromError(err).Code)
}

func TestBuildAttendanceReportWrapsStoreFailure(t *testing.T) {
	students := &stubCohortLister{err: errors.New("connection refused")}
	svc := newTestReportService(students, &stubAttendanceLister{}, &stubIncidentLister{})

	_, _, err := svc.BuildAttendanceReport(context.Background(),
		report.Period{Kind: report.PeriodMonth, Year: 2024, Month: time.March},
		models.CohortFilter{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrFetchFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "connection refused")
}

func TestBuildIncidentSummary(t *testing.T) {
	level := models.LevelPrimaria
	grade := "3"
	sectionA := "A"
	incidents := &stubIncidentLister{incidents: []models.IncidentRecord{
		{ID: "i1", StudentID: "s1", FaultName: "Tardanza", Level: 1, Status: models.IncidentActive, StudentLevel: &level, StudentGrade: &grade, StudentSection: &sectionA},
		{ID: "i2", StudentID: "s1", FaultName: "Uniforme", Level: 2, Status: models.IncidentActive, StudentLevel: &level, StudentGrade: &grade, StudentSection: &sectionA},
		{ID: "i3", StudentID: "s2", FaultName: "Tardanza", Level: 1, Status: models.IncidentActive, StudentLevel: &level, StudentGrade: &grade},
	}}
	svc := newTestReportService(&stubCohortLister{}, &stubAttendanceLister{}, incidents)

	result, cached, err := svc.BuildIncidentSummary(context.Background(), models.CohortFilter{Level: level}, nil, nil)
	require.NoError(t, err)
	assert.False(t, cached)

	// only active incidents are requested from the store
	assert.Equal(t, []models.IncidentStatus{models.IncidentActive}, incidents.filter.StatusIn)

	require.Len(t, result.ByGrade, 1)
	assert.Equal(t, 3, result.ByGrade[0].Count)
	assert.Equal(t, 2, result.ByGrade[0].DistinctStudents)

	// i3 has no section, so the per-section grouping skips it
	require.Len(t, result.BySection, 1)
	assert.Equal(t, 2, result.BySection[0].Count)
	assert.Equal(t, 1, result.SkippedRecords)

	require.Len(t, result.TopFaults, 2)
	assert.Equal(t, "Tardanza", result.TopFaults[0].Name)
	assert.Equal(t, 2, result.TopFaults[0].Count)
}

func TestBuildIncidentSummaryWrapsStoreFailure(t *testing.T) {
	incidents := &stubIncidentLister{err: errors.New("timeout")}
	svc := newTestReportService(&stubCohortLister{}, &stubAttendanceLister{}, incidents)

	_, _, err := svc.BuildIncidentSummary(context.Background(), models.CohortFilter{}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFetchFailed.Code, appErrors.FromError(err).Code)
}

func TestMakeReportCacheKeySkipsEmptyParts(t *testing.T) {
	key := makeReportCacheKey("attendance",
		keyPart{"kind", "month"},
		keyPart{"year", "2024"},
		keyPart{"month", "2"},
		keyPart{"bimester", "0"},
		keyPart{"level", ""},
		keyPart{"grade", "3"},
		keyPart{"section", "A"})
	assert.Equal(t, "report:attendance:kind=month:year=2024:month=2:grade=3:section=A", key)
}

func TestMakeReportCacheKeyNoCrossFieldCollision(t *testing.T) {
	byGrade := makeReportCacheKey("incidents",
		keyPart{"grade", "A"}, keyPart{"section", ""})
	bySection := makeReportCacheKey("incidents",
		keyPart{"grade", ""}, keyPart{"section", "A"})
	assert.NotEqual(t, byGrade, bySection)
}
