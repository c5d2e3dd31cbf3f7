package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

func justificationPtr(j models.Justification) *models.Justification {
	return &j
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		record   *models.AttendanceRecord
		expected CellStatus
	}{
		{"absent record", nil, CellNoRecord},
		{"on time", &models.AttendanceRecord{Status: models.AttendanceOnTime}, CellOnTime},
		{"late", &models.AttendanceRecord{Status: models.AttendanceLate}, CellLate},
		{"justified wins over late", &models.AttendanceRecord{Status: models.AttendanceLate, Justification: justificationPtr(models.JustificationJustified)}, CellJustified},
		{"unjustified wins over late", &models.AttendanceRecord{Status: models.AttendanceLate, Justification: justificationPtr(models.JustificationUnjustified)}, CellUnjustified},
		{"unknown status maps to no record", &models.AttendanceRecord{Status: "Desconocido"}, CellNoRecord},
		{"unknown justification falls back to stored status", &models.AttendanceRecord{Status: models.AttendanceOnTime, Justification: justificationPtr("Pendiente")}, CellOnTime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.record))
		})
	}
}

func TestClassifyArrival(t *testing.T) {
	status, err := ClassifyArrival("07:55", "08:00")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceOnTime, status)

	status, err = ClassifyArrival("08:10", "08:00")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceLate, status)

	// Exactly at the cutoff counts as on time; only strictly after is late.
	status, err = ClassifyArrival("08:00", "08:00")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceOnTime, status)
}

func TestClassifyArrivalBadInput(t *testing.T) {
	_, err := ClassifyArrival("not-a-time", "08:00")
	require.Error(t, err)

	_, err = ClassifyArrival("08:00", "25:99")
	require.Error(t, err)
}
