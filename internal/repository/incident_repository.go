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

// IncidentRepository manages persistence for disciplinary incidents.
type IncidentRepository struct {
	db *sqlx.DB
}

// NewIncidentRepository constructs a new repository.
func NewIncidentRepository(db *sqlx.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

const incidentSelect = `SELECT i.id, i.student_id, i.fault_type_id, i.fault_name, i.severity, i.points, i.level, i.status, i.description, i.registered_by, i.registered_at,
        s.level AS student_level, s.grade AS student_grade, s.section AS student_section
        FROM incidents i LEFT JOIN students s ON s.id = i.student_id`

// List returns incidents per provided filter, joined with the student
// classification triple the aggregator groups on.
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]models.IncidentRecord, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("i.registered_at >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("i.registered_at <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if filter.Level != "" {
		where = append(where, fmt.Sprintf("s.level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Grade != "" {
		where = append(where, fmt.Sprintf("s.grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.Section != "" {
		where = append(where, fmt.Sprintf("s.section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if len(filter.StatusIn) > 0 {
		values := make([]string, len(filter.StatusIn))
		for i, s := range filter.StatusIn {
			values[i] = string(s)
		}
		where = append(where, fmt.Sprintf("i.status = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(values))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY i.registered_at ASC", incidentSelect, strings.Join(where, " AND "))
	var incidents []models.IncidentRecord
	if err := r.db.SelectContext(ctx, &incidents, query, args...); err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return incidents, nil
}

// FindByID returns one incident.
func (r *IncidentRepository) FindByID(ctx context.Context, id string) (*models.IncidentRecord, error) {
	query := fmt.Sprintf("%s WHERE i.id = $1", incidentSelect)
	var incident models.IncidentRecord
	if err := r.db.GetContext(ctx, &incident, query, id); err != nil {
		return nil, err
	}
	return &incident, nil
}

// CountActiveSince counts the student's active incidents registered on or
// after the cutoff timestamp. Feeds the recurrence level at registration.
func (r *IncidentRepository) CountActiveSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM incidents WHERE student_id = $1 AND status = $2 AND registered_at >= $3"
	if err := r.db.GetContext(ctx, &count, query, studentID, models.IncidentActive, since); err != nil {
		return 0, fmt.Errorf("count active incidents: %w", err)
	}
	return count, nil
}

// Create inserts a new incident.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.IncidentRecord) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	if incident.RegisteredAt.IsZero() {
		incident.RegisteredAt = time.Now().UTC()
	}
	query := `INSERT INTO incidents (id, student_id, fault_type_id, fault_name, severity, points, level, status, description, registered_by, registered_at)
VALUES (:id, :student_id, :fault_type_id, :fault_name, :severity, :points, :level, :status, :description, :registered_by, :registered_at)`
	if _, err := r.db.NamedExecContext(ctx, query, incident); err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// UpdateStatus transitions an incident to justified or annulled.
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id string, status models.IncidentStatus) error {
	result, err := r.db.ExecContext(ctx, "UPDATE incidents SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("update incident status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update incident status rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("incident %s: %w", id, ErrNoRowsAffected)
	}
	return nil
}
