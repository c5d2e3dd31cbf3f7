package models

import "time"

// FaultSeverity classifies catalog faults.
type FaultSeverity string

const (
	SeverityLeve     FaultSeverity = "Leve"
	SeverityGrave    FaultSeverity = "Grave"
	SeverityMuyGrave FaultSeverity = "Muy grave"
)

// FaultType is one entry of the institutional fault catalog.
type FaultType struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Severity  FaultSeverity `db:"severity" json:"severity"`
	Points    int           `db:"points" json:"points"`
	Category  string        `db:"category" json:"category"`
	Active    bool          `db:"active" json:"active"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// IncidentStatus tracks the lifecycle of an incident. Only active incidents
// feed comparative statistics; justified and annulled ones represent
// resolved matters.
type IncidentStatus string

const (
	IncidentActive    IncidentStatus = "Activa"
	IncidentJustified IncidentStatus = "Justificada"
	IncidentAnnulled  IncidentStatus = "Anulada"
)

// Valid returns true when the status is a supported value.
func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentActive, IncidentJustified, IncidentAnnulled:
		return true
	default:
		return false
	}
}

// MaxRecurrenceLevel caps the recurrence escalation counter; the histogram
// in grade summaries covers levels 0..4.
const MaxRecurrenceLevel = 4

// IncidentRecord is one infraction event. Fault data is denormalized at
// registration so later catalog edits do not rewrite history; the student
// classification triple is joined in by the repository for grouping and is
// nullable because students may be deleted or unclassified.
type IncidentRecord struct {
	ID           string         `db:"id" json:"id"`
	StudentID    string         `db:"student_id" json:"student_id"`
	FaultTypeID  string         `db:"fault_type_id" json:"fault_type_id"`
	FaultName    string         `db:"fault_name" json:"fault_name"`
	Severity     FaultSeverity  `db:"severity" json:"severity"`
	Points       int            `db:"points" json:"points"`
	Level        int            `db:"level" json:"level"`
	Status       IncidentStatus `db:"status" json:"status"`
	Description  string         `db:"description" json:"description"`
	RegisteredBy *string        `db:"registered_by" json:"registered_by,omitempty"`
	RegisteredAt time.Time      `db:"registered_at" json:"registered_at"`

	StudentLevel   *EducationLevel `db:"student_level" json:"student_level,omitempty"`
	StudentGrade   *string         `db:"student_grade" json:"student_grade,omitempty"`
	StudentSection *string         `db:"student_section" json:"student_section,omitempty"`
}

// IncidentFilter scopes incident listing queries.
type IncidentFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Level    EducationLevel
	Grade    string
	Section  string
	StatusIn []IncidentStatus
	Page     int
	PageSize int
}
