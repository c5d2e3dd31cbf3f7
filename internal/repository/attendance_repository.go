package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

// AttendanceRepository manages persistence for arrival records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs a new repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = "id, student_id, date, arrival_time, status, justification, recorded_by, created_at, updated_at"

// List returns arrival records per provided filter. Used by the reporting
// engine, which fetches the whole range in a single pass.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if len(filter.StudentIDs) > 0 {
		where = append(where, fmt.Sprintf("student_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.StudentIDs))
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	query := fmt.Sprintf("SELECT %s FROM attendance_records WHERE %s ORDER BY date ASC, created_at ASC",
		attendanceColumns, strings.Join(where, " AND "))
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}

// FindByID returns one arrival record.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance_records WHERE id = $1", attendanceColumns)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ExistsForDay reports whether the student already has an arrival record on
// the given calendar day.
func (r *AttendanceRepository) ExistsForDay(ctx context.Context, studentID string, day time.Time) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM attendance_records WHERE student_id = $1 AND date = $2)"
	if err := r.db.GetContext(ctx, &exists, query, studentID, day); err != nil {
		return false, fmt.Errorf("check attendance exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new arrival record.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := `INSERT INTO attendance_records (id, student_id, date, arrival_time, status, justification, recorded_by, created_at, updated_at)
VALUES (:id, :student_id, :date, :arrival_time, :status, :justification, :recorded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create attendance record: %w", err)
	}
	return nil
}

// UpdateJustification applies the justification transition. The arrival
// status itself is never rewritten.
func (r *AttendanceRepository) UpdateJustification(ctx context.Context, id string, justification models.Justification) error {
	query := "UPDATE attendance_records SET justification = $1, updated_at = $2 WHERE id = $3"
	result, err := r.db.ExecContext(ctx, query, justification, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update justification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update justification rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("attendance record %s: %w", id, ErrNoRowsAffected)
	}
	return nil
}
