package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

// FaultRepository manages the institutional fault catalog.
type FaultRepository struct {
	db *sqlx.DB
}

// NewFaultRepository constructs a new repository.
func NewFaultRepository(db *sqlx.DB) *FaultRepository {
	return &FaultRepository{db: db}
}

const faultColumns = "id, name, severity, points, category, active, created_at"

// List returns catalog entries, optionally restricted to active ones.
func (r *FaultRepository) List(ctx context.Context, activeOnly bool) ([]models.FaultType, error) {
	query := fmt.Sprintf("SELECT %s FROM fault_types", faultColumns)
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY severity ASC, name ASC"

	var faults []models.FaultType
	if err := r.db.SelectContext(ctx, &faults, query); err != nil {
		return nil, fmt.Errorf("list fault types: %w", err)
	}
	return faults, nil
}

// FindByID returns one catalog entry.
func (r *FaultRepository) FindByID(ctx context.Context, id string) (*models.FaultType, error) {
	query := fmt.Sprintf("SELECT %s FROM fault_types WHERE id = $1", faultColumns)
	var fault models.FaultType
	if err := r.db.GetContext(ctx, &fault, query, id); err != nil {
		return nil, err
	}
	return &fault, nil
}

// Create inserts a new catalog entry.
func (r *FaultRepository) Create(ctx context.Context, fault *models.FaultType) error {
	if fault.ID == "" {
		fault.ID = uuid.NewString()
	}
	if fault.CreatedAt.IsZero() {
		fault.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO fault_types (id, name, severity, points, category, active, created_at)
VALUES (:id, :name, :severity, :points, :category, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fault); err != nil {
		return fmt.Errorf("create fault type: %w", err)
	}
	return nil
}
