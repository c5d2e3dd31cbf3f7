package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/repository"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
)

// recurrenceWindow is the rolling window used to escalate the recurrence
// level at registration time.
const recurrenceWindow = 30 * 24 * time.Hour

type incidentRepository interface {
	Create(ctx context.Context, incident *models.IncidentRecord) error
	FindByID(ctx context.Context, id string) (*models.IncidentRecord, error)
	List(ctx context.Context, filter models.IncidentFilter) ([]models.IncidentRecord, error)
	CountActiveSince(ctx context.Context, studentID string, since time.Time) (int, error)
	UpdateStatus(ctx context.Context, id string, status models.IncidentStatus) error
}

type faultFinder interface {
	FindByID(ctx context.Context, id string) (*models.FaultType, error)
	List(ctx context.Context, activeOnly bool) ([]models.FaultType, error)
}

// IncidentService registers incidents and lifecycle transitions.
type IncidentService struct {
	repo      incidentRepository
	students  studentFinder
	faults    faultFinder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewIncidentService constructs the service.
func NewIncidentService(repo incidentRepository, students studentFinder, faults faultFinder, validate *validator.Validate, logger *zap.Logger) *IncidentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{
		repo:      repo,
		students:  students,
		faults:    faults,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterIncidentRequest describes an incident registration payload.
type RegisterIncidentRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	FaultTypeID  string `json:"fault_type_id" validate:"required"`
	Description  string `json:"description"`
	RegisteredBy string `json:"-"`
}

// Register validates the student and fault, computes the recurrence level
// from prior active incidents in the rolling window, denormalizes fault
// data and persists the incident as active.
func (s *IncidentService) Register(ctx context.Context, req RegisterIncidentRequest) (*models.IncidentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid incident payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	fault, err := s.faults.FindByID(ctx, req.FaultTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fault type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fault type")
	}
	if !fault.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fault type is not active")
	}

	prior, err := s.repo.CountActiveSince(ctx, student.ID, s.now().UTC().Add(-recurrenceWindow))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute recurrence level")
	}
	level := prior
	if level > models.MaxRecurrenceLevel {
		level = models.MaxRecurrenceLevel
	}

	incident := &models.IncidentRecord{
		StudentID:   student.ID,
		FaultTypeID: fault.ID,
		FaultName:   fault.Name,
		Severity:    fault.Severity,
		Points:      fault.Points,
		Level:       level,
		Status:      models.IncidentActive,
		Description: req.Description,
	}
	if req.RegisteredBy != "" {
		incident.RegisteredBy = &req.RegisteredBy
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create incident")
	}

	s.logger.Info("incident registered",
		zap.String("student_id", student.ID),
		zap.String("fault", fault.Name),
		zap.Int("level", level),
	)
	return incident, nil
}

// SetStatus transitions an incident to justified or annulled. Resolved
// incidents drop out of comparative statistics.
func (s *IncidentService) SetStatus(ctx context.Context, id string, status models.IncidentStatus) (*models.IncidentRecord, error) {
	if status != models.IncidentJustified && status != models.IncidentAnnulled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Justificada or Anulada")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update incident status")
	}
	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}
	return incident, nil
}

// List returns incidents matching the filter.
func (s *IncidentService) List(ctx context.Context, filter models.IncidentFilter) ([]models.IncidentRecord, error) {
	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incidents")
	}
	return incidents, nil
}

// ListFaults returns the fault catalog.
func (s *IncidentService) ListFaults(ctx context.Context, activeOnly bool) ([]models.FaultType, error) {
	faults, err := s.faults.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fault types")
	}
	return faults, nil
}
