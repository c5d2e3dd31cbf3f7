package report

import (
	"fmt"
	"time"

	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
)

// PeriodKind selects how a reporting period is expressed.
type PeriodKind string

const (
	PeriodMonth    PeriodKind = "month"
	PeriodBimester PeriodKind = "bimester"
)

// Period is a reporting period selector: either a calendar month or one of
// the four bimesters of a school year.
type Period struct {
	Kind PeriodKind `json:"kind"`

	Year  int        `json:"year,omitempty"`
	Month time.Month `json:"month,omitempty"`

	SchoolYear int `json:"school_year,omitempty"`
	Bimester   int `json:"bimester,omitempty"`
}

// DateRange is a resolved reporting window, inclusive of both endpoints and
// aligned to calendar days in the reporting timezone. Ephemeral; computed
// per report request.
type DateRange struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	DayCount int       `json:"day_count"`
}

// Contains reports whether t falls inside the range, at day granularity.
func (r DateRange) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.Start.Location())
	return !day.Before(r.Start) && !day.After(r.End)
}

// DayOffset returns the 1-based day number of t within the range, or 0 when
// t falls outside it.
func (r DateRange) DayOffset(t time.Time) int {
	if !r.Contains(t) {
		return 0
	}
	return calendarDays(r.Start, t) + 1
}

// calendarDays counts whole calendar days from a to b. Both dates are
// re-anchored to UTC midnight first: dividing wall-clock durations by 24h
// miscounts across DST transitions, where a civil day is 23 or 25 hours.
func calendarDays(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

type calendarKey struct {
	SchoolYear int
	Bimester   int
}

type calendarSpan struct {
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// AcademicCalendar maps (schoolYear, bimester) to fixed date spans. Spans
// are keyed structurally, never by concatenated strings.
type AcademicCalendar struct {
	spans map[calendarKey]calendarSpan
}

// NewAcademicCalendar returns an empty calendar.
func NewAcademicCalendar() *AcademicCalendar {
	return &AcademicCalendar{spans: make(map[calendarKey]calendarSpan)}
}

// AddBimester registers the span for one bimester of a school year.
func (c *AcademicCalendar) AddBimester(schoolYear, bimester int, startMonth time.Month, startDay int, endMonth time.Month, endDay int) {
	c.spans[calendarKey{SchoolYear: schoolYear, Bimester: bimester}] = calendarSpan{
		StartMonth: startMonth,
		StartDay:   startDay,
		EndMonth:   endMonth,
		EndDay:     endDay,
	}
}

// AddDefaultYear registers the institutional bimester layout for a school
// year: B1 Mar 1 - May 15, B2 May 16 - Jul 31, B3 Aug 1 - Oct 15,
// B4 Oct 16 - Dec 20.
func (c *AcademicCalendar) AddDefaultYear(schoolYear int) {
	c.AddBimester(schoolYear, 1, time.March, 1, time.May, 15)
	c.AddBimester(schoolYear, 2, time.May, 16, time.July, 31)
	c.AddBimester(schoolYear, 3, time.August, 1, time.October, 15)
	c.AddBimester(schoolYear, 4, time.October, 16, time.December, 20)
}

// DefaultAcademicCalendar builds a calendar covering the provided school
// years with the institutional bimester layout.
func DefaultAcademicCalendar(schoolYears ...int) *AcademicCalendar {
	cal := NewAcademicCalendar()
	for _, year := range schoolYears {
		cal.AddDefaultYear(year)
	}
	return cal
}

func (c *AcademicCalendar) lookup(schoolYear, bimester int) (calendarSpan, bool) {
	if c == nil || c.spans == nil {
		return calendarSpan{}, false
	}
	span, ok := c.spans[calendarKey{SchoolYear: schoolYear, Bimester: bimester}]
	return span, ok
}

// ResolvePeriod turns a period selector into a concrete inclusive date
// range in the given location. Pure function, no I/O.
func ResolvePeriod(p Period, cal *AcademicCalendar, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch p.Kind {
	case PeriodMonth:
		if p.Month < time.January || p.Month > time.December {
			return DateRange{}, appErrors.Clone(appErrors.ErrInvalidPeriod, fmt.Sprintf("month %d is outside 1-12", p.Month))
		}
		start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, -1)
		return DateRange{Start: start, End: end, DayCount: end.Day()}, nil

	case PeriodBimester:
		if p.Bimester < 1 || p.Bimester > 4 {
			return DateRange{}, appErrors.Clone(appErrors.ErrInvalidPeriod, fmt.Sprintf("bimester %d is outside 1-4", p.Bimester))
		}
		span, ok := cal.lookup(p.SchoolYear, p.Bimester)
		if !ok {
			return DateRange{}, appErrors.Clone(appErrors.ErrInvalidPeriod, fmt.Sprintf("school year %d has no bimester %d", p.SchoolYear, p.Bimester))
		}
		start := time.Date(p.SchoolYear, span.StartMonth, span.StartDay, 0, 0, 0, 0, loc)
		end := time.Date(p.SchoolYear, span.EndMonth, span.EndDay, 0, 0, 0, 0, loc)
		if end.Before(start) {
			return DateRange{}, appErrors.Clone(appErrors.ErrInvalidPeriod, "bimester range is inverted")
		}
		return DateRange{Start: start, End: end, DayCount: calendarDays(start, end) + 1}, nil

	default:
		return DateRange{}, appErrors.Clone(appErrors.ErrInvalidPeriod, fmt.Sprintf("unknown period kind %q", p.Kind))
	}
}
