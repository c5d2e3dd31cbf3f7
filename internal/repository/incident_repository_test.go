package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

func TestIncidentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "fault_type_id", "fault_name", "severity", "points", "level", "status", "description", "registered_by", "registered_at",
		"student_level", "student_grade", "student_section",
	}).
		AddRow("i1", "s1", "f1", "Tardanza reiterada", "Leve", 2, 1, "Activa", "", nil, now, "Secundaria", "3ro", "A").
		AddRow("i2", "s2", "f2", "Uniforme incompleto", "Leve", 1, 0, "Activa", "", nil, now, nil, nil, nil)
	mock.ExpectQuery("SELECT i.id, i.student_id, i.fault_type_id").
		WillReturnRows(rows)

	incidents, err := repo.List(context.Background(), models.IncidentFilter{
		StatusIn: []models.IncidentStatus{models.IncidentActive},
	})
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	require.NotNil(t, incidents[0].StudentLevel)
	assert.Equal(t, models.LevelSecundaria, *incidents[0].StudentLevel)
	assert.Nil(t, incidents[1].StudentLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncidentRepositoryCountActiveSince(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("s1", models.IncidentActive, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountActiveSince(context.Background(), "s1", time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncidentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	mock.ExpectExec("INSERT INTO incidents").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	incident := &models.IncidentRecord{
		StudentID:   "s1",
		FaultTypeID: "f1",
		FaultName:   "Tardanza reiterada",
		Severity:    models.SeverityLeve,
		Points:      2,
		Level:       1,
		Status:      models.IncidentActive,
	}
	err := repo.Create(context.Background(), incident)
	require.NoError(t, err)
	assert.NotEmpty(t, incident.ID)
	assert.False(t, incident.RegisteredAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncidentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	mock.ExpectExec("UPDATE incidents SET status").
		WithArgs(models.IncidentAnnulled, "i1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "i1", models.IncidentAnnulled)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
