package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

func incident(student string, level int, status models.IncidentStatus, fault string, classLevel models.EducationLevel, grade, section string) models.IncidentRecord {
	return models.IncidentRecord{
		StudentID:      student,
		FaultName:      fault,
		Level:          level,
		Status:         status,
		StudentLevel:   &classLevel,
		StudentGrade:   &grade,
		StudentSection: &section,
	}
}

func TestAggregateIncidentsByGrade(t *testing.T) {
	records := []models.IncidentRecord{
		incident("s1", 2, models.IncidentActive, "Tardanza", models.LevelSecundaria, "3ro", "A"),
		incident("s2", 0, models.IncidentActive, "Uniforme", models.LevelSecundaria, "3ro", "B"),
		incident("s3", 4, models.IncidentActive, "Tardanza", models.LevelSecundaria, "4to", "A"),
	}

	summaries, skipped := AggregateIncidents(records, GroupByGrade)
	require.Len(t, summaries, 2)
	assert.Zero(t, skipped)

	third := summaries[0]
	assert.Equal(t, GroupKey{Level: models.LevelSecundaria, Grade: "3ro"}, third.Key)
	assert.Equal(t, 2, third.Count)
	assert.Equal(t, 2, third.DistinctStudents)
	assert.Equal(t, 1.0, third.AverageLevel)
	assert.Equal(t, []int{1, 0, 1, 0, 0}, third.LevelHistogram)

	fourth := summaries[1]
	assert.Equal(t, GroupKey{Level: models.LevelSecundaria, Grade: "4to"}, fourth.Key)
	assert.Equal(t, 1, fourth.Count)
	assert.Equal(t, 4.0, fourth.AverageLevel)
	assert.Equal(t, []int{0, 0, 0, 0, 1}, fourth.LevelHistogram)
}

func TestAggregateIncidentsBySection(t *testing.T) {
	records := []models.IncidentRecord{
		incident("s1", 1, models.IncidentActive, "Tardanza", models.LevelSecundaria, "3ro", "B"),
		incident("s1", 3, models.IncidentActive, "Tardanza", models.LevelSecundaria, "3ro", "B"),
		incident("s2", 2, models.IncidentActive, "Uniforme", models.LevelSecundaria, "3ro", "A"),
	}

	summaries, skipped := AggregateIncidents(records, GroupBySection)
	require.Len(t, summaries, 2)
	assert.Zero(t, skipped)

	assert.Equal(t, "A", summaries[0].Key.Section)
	assert.Equal(t, "B", summaries[1].Key.Section)
	assert.Equal(t, 2, summaries[1].Count)
	assert.Equal(t, 1, summaries[1].DistinctStudents)
	assert.Equal(t, 2.0, summaries[1].AverageLevel)
	assert.Nil(t, summaries[0].LevelHistogram)
}

func TestAggregateIncidentsExcludesResolved(t *testing.T) {
	records := []models.IncidentRecord{
		incident("s1", 2, models.IncidentJustified, "Tardanza", models.LevelPrimaria, "2do", "A"),
		incident("s2", 1, models.IncidentAnnulled, "Uniforme", models.LevelPrimaria, "2do", "A"),
	}
	summaries, skipped := AggregateIncidents(records, GroupByGrade)
	assert.Empty(t, summaries)
	assert.Zero(t, skipped)
}

func TestAggregateIncidentsSkipsUnclassified(t *testing.T) {
	missing := incident("s1", 2, models.IncidentActive, "Tardanza", models.LevelPrimaria, "2do", "A")
	missing.StudentGrade = nil
	records := []models.IncidentRecord{
		missing,
		incident("s2", 0, models.IncidentActive, "Uniforme", models.LevelPrimaria, "2do", "A"),
	}
	summaries, skipped := AggregateIncidents(records, GroupByGrade)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, summaries[0].Count)
}

func TestAggregateIncidentsLevelOrdering(t *testing.T) {
	records := []models.IncidentRecord{
		incident("s1", 1, models.IncidentActive, "Tardanza", models.LevelSecundaria, "1ro", "A"),
		incident("s2", 1, models.IncidentActive, "Tardanza", models.LevelPrimaria, "5to", "A"),
		incident("s3", 1, models.IncidentActive, "Tardanza", models.LevelPrimaria, "2do", "A"),
	}
	summaries, _ := AggregateIncidents(records, GroupByGrade)
	require.Len(t, summaries, 3)
	// Primaria precedes Secundaria regardless of grade ordering.
	assert.Equal(t, models.LevelPrimaria, summaries[0].Key.Level)
	assert.Equal(t, "2do", summaries[0].Key.Grade)
	assert.Equal(t, models.LevelPrimaria, summaries[1].Key.Level)
	assert.Equal(t, "5to", summaries[1].Key.Grade)
	assert.Equal(t, models.LevelSecundaria, summaries[2].Key.Level)
}

func TestAggregateIncidentsAverageRounding(t *testing.T) {
	records := []models.IncidentRecord{
		incident("s1", 1, models.IncidentActive, "Tardanza", models.LevelPrimaria, "1ro", "A"),
		incident("s2", 1, models.IncidentActive, "Tardanza", models.LevelPrimaria, "1ro", "A"),
		incident("s3", 2, models.IncidentActive, "Tardanza", models.LevelPrimaria, "1ro", "A"),
	}
	summaries, _ := AggregateIncidents(records, GroupByGrade)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1.33, summaries[0].AverageLevel)
}

func TestTopFaults(t *testing.T) {
	records := []models.IncidentRecord{}
	add := func(fault string, times int) {
		for i := 0; i < times; i++ {
			records = append(records, incident("s", 0, models.IncidentActive, fault, models.LevelPrimaria, "1ro", "A"))
		}
	}
	add("A", 3)
	add("B", 5)
	add("C", 5)
	add("D", 1)

	ranking := TopFaults(records, 5)
	require.Len(t, ranking, 4)
	// B and C tie at 5; first-seen order keeps B ahead of C.
	assert.Equal(t, FaultFrequency{Name: "B", Count: 5}, ranking[0])
	assert.Equal(t, FaultFrequency{Name: "C", Count: 5}, ranking[1])
	assert.Equal(t, FaultFrequency{Name: "A", Count: 3}, ranking[2])
	assert.Equal(t, FaultFrequency{Name: "D", Count: 1}, ranking[3])
}

func TestTopFaultsTruncatesToFive(t *testing.T) {
	records := []models.IncidentRecord{}
	faults := []string{"F1", "F2", "F3", "F4", "F5", "F6", "F7"}
	for i, f := range faults {
		for j := 0; j <= i; j++ {
			records = append(records, incident("s", 0, models.IncidentActive, f, models.LevelPrimaria, "1ro", "A"))
		}
	}

	ranking := TopFaults(records, 0)
	require.Len(t, ranking, 5)
	assert.Equal(t, "F7", ranking[0].Name)
	assert.Equal(t, 7, ranking[0].Count)
	assert.Equal(t, "F3", ranking[4].Name)
}

func TestTopFaultsIgnoresResolved(t *testing.T) {
	records := []models.IncidentRecord{
		incident("s1", 0, models.IncidentAnnulled, "Tardanza", models.LevelPrimaria, "1ro", "A"),
		incident("s2", 0, models.IncidentJustified, "Uniforme", models.LevelPrimaria, "1ro", "A"),
	}
	assert.Empty(t, TopFaults(records, 5))
}
