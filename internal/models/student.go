package models

import "time"

// EducationLevel identifies the stage a student belongs to.
type EducationLevel string

const (
	LevelPrimaria   EducationLevel = "Primaria"
	LevelSecundaria EducationLevel = "Secundaria"
)

// Rank returns the fixed display ordering for levels. Reports always list
// Primaria before Secundaria; this is institutional convention, not
// alphabetical order.
func (l EducationLevel) Rank() int {
	switch l {
	case LevelPrimaria:
		return 0
	case LevelSecundaria:
		return 1
	default:
		return 2
	}
}

// Valid returns true when the level is a supported value.
func (l EducationLevel) Valid() bool {
	return l == LevelPrimaria || l == LevelSecundaria
}

// Student represents a learner registered in the institution. The
// (level, grade, section) triple is the grouping and filter key for every
// report in the portal.
type Student struct {
	ID        string         `db:"id" json:"id"`
	Code      string         `db:"code" json:"code"`
	FullName  string         `db:"full_name" json:"full_name"`
	Level     EducationLevel `db:"level" json:"level"`
	Grade     string         `db:"grade" json:"grade"`
	Section   string         `db:"section" json:"section"`
	Active    bool           `db:"active" json:"active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
// Empty classification fields impose no constraint.
type StudentFilter struct {
	Level      EducationLevel
	Grade      string
	Section    string
	Search     string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// CohortFilter selects a report cohort by classification. Empty fields
// impose no constraint.
type CohortFilter struct {
	Level   EducationLevel `json:"level,omitempty"`
	Grade   string         `json:"grade,omitempty"`
	Section string         `json:"section,omitempty"`
}

// Matches reports whether the student satisfies every provided selector.
func (f CohortFilter) Matches(s Student) bool {
	if f.Level != "" && s.Level != f.Level {
		return false
	}
	if f.Grade != "" && s.Grade != f.Grade {
		return false
	}
	if f.Section != "" && s.Section != f.Section {
		return false
	}
	return true
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
