package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAttendanceRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "date", "arrival_time", "status", "justification", "recorded_by", "created_at", "updated_at"}).
		AddRow("r1", "s1", now, "07:55", "A tiempo", nil, nil, now, now).
		AddRow("r2", "s1", now, "08:10", "Tarde", nil, nil, now, now)
	mock.ExpectQuery("SELECT id, student_id, date, arrival_time, status, justification, recorded_by, created_at, updated_at FROM attendance_records").
		WillReturnRows(rows)

	from := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	records, err := repo.List(context.Background(), models.AttendanceFilter{
		StudentIDs: []string{"s1"},
		DateFrom:   &from,
		DateTo:     &to,
	})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, models.AttendanceOnTime, records[0].Status)
	assert.Equal(t, models.AttendanceLate, records[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance_records").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.AttendanceRecord{
		StudentID:   "s1",
		Date:        time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		ArrivalTime: "07:55",
		Status:      models.AttendanceOnTime,
	}
	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpdateJustification(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("UPDATE attendance_records SET justification").
		WithArgs(models.JustificationJustified, sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateJustification(context.Background(), "r1", models.JustificationJustified)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpdateJustificationMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("UPDATE attendance_records SET justification").
		WithArgs(models.JustificationUnjustified, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateJustification(context.Background(), "missing", models.JustificationUnjustified)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRowsAffected)
}
