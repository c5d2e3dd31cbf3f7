package models

import "time"

// AttendanceStatus is the arrival status stored when a student is scanned
// at the gate. It is fixed at creation time against the configured cutoff
// and never recomputed, so later cutoff changes do not rewrite history.
type AttendanceStatus string

const (
	AttendanceOnTime AttendanceStatus = "A tiempo"
	AttendanceLate   AttendanceStatus = "Tarde"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	return s == AttendanceOnTime || s == AttendanceLate
}

// Justification is an optional later transition on an attendance record,
// applied by an authorized role after review.
type Justification string

const (
	JustificationJustified   Justification = "Justificada"
	JustificationUnjustified Justification = "Injustificada"
)

// Valid returns true when the justification is a supported value.
func (j Justification) Valid() bool {
	return j == JustificationJustified || j == JustificationUnjustified
}

// AttendanceRecord is one arrival event. Immutable once created except for
// the justification transition.
type AttendanceRecord struct {
	ID            string           `db:"id" json:"id"`
	StudentID     string           `db:"student_id" json:"student_id"`
	Date          time.Time        `db:"date" json:"date"`
	ArrivalTime   string           `db:"arrival_time" json:"arrival_time"`
	Status        AttendanceStatus `db:"status" json:"status"`
	Justification *Justification   `db:"justification" json:"justification,omitempty"`
	RecordedBy    *string          `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter scopes attendance listing queries.
type AttendanceFilter struct {
	StudentIDs []string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}
