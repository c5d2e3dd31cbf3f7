package report

import (
	"math"
	"sort"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

// GroupBy selects the grouping granularity for incident summaries.
type GroupBy int

const (
	// GroupByGrade groups by (level, grade) and fills the level histogram.
	GroupByGrade GroupBy = iota
	// GroupBySection groups by (level, grade, section).
	GroupBySection
)

// GroupKey is the composite grouping key. A struct key avoids the collisions
// concatenated strings suffer when separators appear inside field values.
type GroupKey struct {
	Level   models.EducationLevel `json:"level"`
	Grade   string                `json:"grade"`
	Section string                `json:"section,omitempty"`
}

// GroupSummary aggregates one incident group.
type GroupSummary struct {
	Key              GroupKey `json:"key"`
	Count            int      `json:"count"`
	DistinctStudents int      `json:"distinct_students"`
	AverageLevel     float64  `json:"average_level"`
	LevelHistogram   []int    `json:"level_histogram,omitempty"`
}

// FaultFrequency is one entry of the top-N fault ranking.
type FaultFrequency struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type groupAccumulator struct {
	count     int
	students  map[string]struct{}
	levelSum  int
	histogram [models.MaxRecurrenceLevel + 1]int
}

// AggregateIncidents groups active incidents by the requested key and
// computes count, distinct-student count and mean recurrence level per
// group. Records that are not active are excluded by design; records
// missing the classification fields the key needs are skipped and reported
// in the second return value so the caller can log them. Results are
// ordered by level (fixed institutional order), then grade, then section.
func AggregateIncidents(records []models.IncidentRecord, by GroupBy) ([]GroupSummary, int) {
	groups := make(map[GroupKey]*groupAccumulator)
	order := make([]GroupKey, 0)
	skipped := 0

	for i := range records {
		rec := &records[i]
		if rec.Status != models.IncidentActive {
			continue
		}
		key, ok := groupKeyFor(rec, by)
		if !ok {
			skipped++
			continue
		}
		acc, exists := groups[key]
		if !exists {
			acc = &groupAccumulator{students: make(map[string]struct{})}
			groups[key] = acc
			order = append(order, key)
		}
		acc.count++
		acc.students[rec.StudentID] = struct{}{}
		acc.levelSum += rec.Level
		if rec.Level >= 0 && rec.Level <= models.MaxRecurrenceLevel {
			acc.histogram[rec.Level]++
		}
	}

	summaries := make([]GroupSummary, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		summary := GroupSummary{
			Key:              key,
			Count:            acc.count,
			DistinctStudents: len(acc.students),
			AverageLevel:     round2(float64(acc.levelSum) / float64(acc.count)),
		}
		if by == GroupByGrade {
			hist := make([]int, len(acc.histogram))
			copy(hist, acc.histogram[:])
			summary.LevelHistogram = hist
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].Key, summaries[j].Key
		if a.Level.Rank() != b.Level.Rank() {
			return a.Level.Rank() < b.Level.Rank()
		}
		if a.Grade != b.Grade {
			return a.Grade < b.Grade
		}
		return a.Section < b.Section
	})

	return summaries, skipped
}

func groupKeyFor(rec *models.IncidentRecord, by GroupBy) (GroupKey, bool) {
	if rec.StudentLevel == nil || rec.StudentGrade == nil {
		return GroupKey{}, false
	}
	key := GroupKey{Level: *rec.StudentLevel, Grade: *rec.StudentGrade}
	if by == GroupBySection {
		if rec.StudentSection == nil {
			return GroupKey{}, false
		}
		key.Section = *rec.StudentSection
	}
	return key, true
}

// TopFaults counts active incidents per fault-type name, sorts descending
// by count and truncates to n entries (5 when n <= 0). Ties keep first-seen
// order: the stable sort preserves input iteration order, which is the only
// secondary key the data offers.
func TopFaults(records []models.IncidentRecord, n int) []FaultFrequency {
	if n <= 0 {
		n = 5
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for i := range records {
		rec := &records[i]
		if rec.Status != models.IncidentActive {
			continue
		}
		if _, seen := counts[rec.FaultName]; !seen {
			order = append(order, rec.FaultName)
		}
		counts[rec.FaultName]++
	}

	ranking := make([]FaultFrequency, 0, len(order))
	for _, name := range order {
		ranking = append(ranking, FaultFrequency{Name: name, Count: counts[name]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})

	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
