package report

import (
	"fmt"
	"time"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

// CellStatus is the classified state of one student/day cell.
type CellStatus string

const (
	CellOnTime      CellStatus = "on_time"
	CellLate        CellStatus = "late"
	CellJustified   CellStatus = "justified"
	CellUnjustified CellStatus = "unjustified"
	CellNoRecord    CellStatus = "no_record"
)

// Classify maps an attendance record, or its absence, to a cell status.
// A later justification wins over the stored arrival status. Unknown stored
// values map to CellNoRecord; the function is total and never panics.
// Classification only echoes what was stored at creation time; it never
// recomputes the cutoff comparison, so historical rows keep their status
// even if the cutoff configuration changes.
func Classify(rec *models.AttendanceRecord) CellStatus {
	if rec == nil {
		return CellNoRecord
	}
	if rec.Justification != nil {
		switch *rec.Justification {
		case models.JustificationJustified:
			return CellJustified
		case models.JustificationUnjustified:
			return CellUnjustified
		}
	}
	switch rec.Status {
	case models.AttendanceOnTime:
		return CellOnTime
	case models.AttendanceLate:
		return CellLate
	default:
		return CellNoRecord
	}
}

// ClassifyArrival decides on-time versus late at record-creation time:
// strictly after the cutoff is late. Both arguments are HH:MM clock times.
func ClassifyArrival(arrival, cutoff string) (models.AttendanceStatus, error) {
	arrivalClock, err := parseClock(arrival)
	if err != nil {
		return "", fmt.Errorf("parse arrival time: %w", err)
	}
	cutoffClock, err := parseClock(cutoff)
	if err != nil {
		return "", fmt.Errorf("parse cutoff time: %w", err)
	}
	if arrivalClock.After(cutoffClock) {
		return models.AttendanceLate, nil
	}
	return models.AttendanceOnTime, nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}
