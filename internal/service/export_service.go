package service

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/colegio-sanjuan/portal-api/internal/dto"
	"github.com/colegio-sanjuan/portal-api/internal/report"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
	"github.com/colegio-sanjuan/portal-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportService renders report payloads into downloadable documents.
// Cell statuses are exported as short marks; full localized labels are the
// front-end's concern.
type ExportService struct {
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

var cellMarks = map[report.CellStatus]string{
	report.CellOnTime:      "P",
	report.CellLate:        "T",
	report.CellJustified:   "J",
	report.CellUnjustified: "I",
	report.CellNoRecord:    "-",
}

// RenderAttendance produces the matrix document in the requested format.
func (s *ExportService) RenderAttendance(payload *dto.AttendanceReport, format ExportFormat) ([]byte, string, error) {
	data := attendanceDataset(payload)
	switch format {
	case FormatCSV:
		raw, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return raw, "text/csv", nil
	case FormatPDF:
		raw, err := s.pdf.Render(data, "Reporte de asistencia")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return raw, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// RenderIncidentSummary produces the grouped statistics document.
func (s *ExportService) RenderIncidentSummary(payload *dto.IncidentSummary, format ExportFormat) ([]byte, string, error) {
	data := incidentDataset(payload)
	switch format {
	case FormatCSV:
		raw, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return raw, "text/csv", nil
	case FormatPDF:
		raw, err := s.pdf.Render(data, "Resumen de incidencias")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return raw, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func attendanceDataset(payload *dto.AttendanceReport) export.Dataset {
	headers := []string{"Estudiante"}
	for day := 1; day <= payload.Range.DayCount; day++ {
		headers = append(headers, strconv.Itoa(day))
	}
	headers = append(headers, "P", "T", "J", "I")

	rows := make([]map[string]string, 0, len(payload.Rows))
	for _, row := range payload.Rows {
		record := make(map[string]string, len(headers))
		record["Estudiante"] = row.Student.FullName
		for _, cell := range row.Cells {
			record[strconv.Itoa(cell.Day)] = cellMarks[cell.Status]
		}
		record["P"] = strconv.Itoa(row.Totals.OnTime)
		record["T"] = strconv.Itoa(row.Totals.Late)
		record["J"] = strconv.Itoa(row.Totals.Justified)
		record["I"] = strconv.Itoa(row.Totals.Unjustified)
		rows = append(rows, record)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func incidentDataset(payload *dto.IncidentSummary) export.Dataset {
	headers := []string{"Nivel", "Grado", "Sección", "Incidencias", "Estudiantes", "Nivel promedio"}
	rows := make([]map[string]string, 0, len(payload.ByGrade)+len(payload.BySection))
	appendSummary := func(summary report.GroupSummary) {
		rows = append(rows, map[string]string{
			"Nivel":          string(summary.Key.Level),
			"Grado":          summary.Key.Grade,
			"Sección":        summary.Key.Section,
			"Incidencias":    strconv.Itoa(summary.Count),
			"Estudiantes":    strconv.Itoa(summary.DistinctStudents),
			"Nivel promedio": strconv.FormatFloat(summary.AverageLevel, 'f', 2, 64),
		})
	}
	for _, summary := range payload.ByGrade {
		appendSummary(summary)
	}
	for _, summary := range payload.BySection {
		appendSummary(summary)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
