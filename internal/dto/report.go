package dto

import (
	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/report"
)

// AttendanceReport is the serialization-ready attendance matrix payload.
// Labels and formatting are presentation concerns and stay out of it.
type AttendanceReport struct {
	Period report.Period      `json:"period"`
	Range  report.DateRange   `json:"range"`
	Rows   []report.MatrixRow `json:"rows"`
	Totals report.Totals      `json:"totals"`
}

// IncidentSummary bundles the grouped incident statistics.
type IncidentSummary struct {
	Filter         models.CohortFilter     `json:"filter"`
	ByGrade        []report.GroupSummary   `json:"by_grade"`
	BySection      []report.GroupSummary   `json:"by_section"`
	TopFaults      []report.FaultFrequency `json:"top_faults"`
	SkippedRecords int                     `json:"skipped_records"`
}
