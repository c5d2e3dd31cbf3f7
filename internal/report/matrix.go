package report

import (
	"sort"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

// DayCell is one classified day for one student.
type DayCell struct {
	Day    int        `json:"day"`
	Status CellStatus `json:"status"`
	Time   string     `json:"time,omitempty"`
}

// Totals counts classified cells per state. NoRecord cells are not counted
// in any total.
type Totals struct {
	OnTime      int `json:"on_time"`
	Late        int `json:"late"`
	Justified   int `json:"justified"`
	Unjustified int `json:"unjustified"`
}

// Add increments the counter matching the status.
func (t *Totals) Add(status CellStatus) {
	switch status {
	case CellOnTime:
		t.OnTime++
	case CellLate:
		t.Late++
	case CellJustified:
		t.Justified++
	case CellUnjustified:
		t.Unjustified++
	}
}

// Merge adds the other totals elementwise.
func (t *Totals) Merge(other Totals) {
	t.OnTime += other.OnTime
	t.Late += other.Late
	t.Justified += other.Justified
	t.Unjustified += other.Unjustified
}

// MatrixRow is one student with exactly DayCount classified cells.
type MatrixRow struct {
	Student models.Student `json:"student"`
	Cells   []DayCell      `json:"cells"`
	Totals  Totals         `json:"totals"`
}

// AttendanceMatrix is the full per-student daily grid for a resolved range.
type AttendanceMatrix struct {
	Range  DateRange   `json:"range"`
	Rows   []MatrixRow `json:"rows"`
	Totals Totals      `json:"totals"`
}

// RecordIndex maps student id then 1-based day offset to the arrival record
// for that day.
type RecordIndex map[string]map[int]*models.AttendanceRecord

// IndexRecords buckets attendance records by student and day offset within
// the range. Records outside the range are dropped. When a student has more
// than one record on a day the first one wins; arrivals are registered once
// per day upstream.
func IndexRecords(records []models.AttendanceRecord, rng DateRange) RecordIndex {
	index := make(RecordIndex)
	for i := range records {
		rec := &records[i]
		day := rng.DayOffset(rec.Date)
		if day == 0 {
			continue
		}
		byDay, ok := index[rec.StudentID]
		if !ok {
			byDay = make(map[int]*models.AttendanceRecord)
			index[rec.StudentID] = byDay
		}
		if _, exists := byDay[day]; !exists {
			byDay[day] = rec
		}
	}
	return index
}

// BuildMatrix produces one row per student, sorted by full name ascending
// (a user-facing contract), with one classified cell per day in the range.
// Students with no records still yield a full row of NoRecord cells; rows
// are never dropped for lack of data. An empty cohort yields an empty row
// list, not an error.
func BuildMatrix(students []models.Student, rng DateRange, index RecordIndex) *AttendanceMatrix {
	sorted := make([]models.Student, len(students))
	copy(sorted, students)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FullName < sorted[j].FullName
	})

	matrix := &AttendanceMatrix{Range: rng, Rows: make([]MatrixRow, 0, len(sorted))}
	for _, student := range sorted {
		row := MatrixRow{Student: student, Cells: make([]DayCell, 0, rng.DayCount)}
		byDay := index[student.ID]
		for day := 1; day <= rng.DayCount; day++ {
			rec := byDay[day]
			cell := DayCell{Day: day, Status: Classify(rec)}
			if rec != nil {
				cell.Time = rec.ArrivalTime
			}
			row.Cells = append(row.Cells, cell)
			row.Totals.Add(cell.Status)
		}
		matrix.Totals.Merge(row.Totals)
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix
}
