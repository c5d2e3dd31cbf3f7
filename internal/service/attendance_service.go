package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/report"
	"github.com/colegio-sanjuan/portal-api/internal/repository"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
)

type attendanceRepository interface {
	Create(ctx context.Context, record *models.AttendanceRecord) error
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	ExistsForDay(ctx context.Context, studentID string, day time.Time) (bool, error)
	UpdateJustification(ctx context.Context, id string, justification models.Justification) error
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type cutoffProvider interface {
	ArrivalCutoff(ctx context.Context) string
}

// AttendanceService registers arrivals and justification transitions.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentFinder
	cutoffs   cutoffProvider
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewAttendanceService constructs the service. loc is the reporting
// timezone; day boundaries are computed against it, never against host
// local time.
func NewAttendanceService(repo attendanceRepository, students studentFinder, cutoffs cutoffProvider, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		repo:      repo,
		students:  students,
		cutoffs:   cutoffs,
		validator: validate,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// RegisterArrivalRequest describes an arrival registration payload.
type RegisterArrivalRequest struct {
	StudentID   string     `json:"student_id" validate:"required"`
	ArrivalTime string     `json:"arrival_time" validate:"required"`
	Date        *time.Time `json:"date,omitempty"`
	RecordedBy  string     `json:"-"`
}

// RegisterArrival validates the student, classifies the arrival against the
// configured cutoff and persists the record. The classification is fixed at
// this moment; later cutoff changes never rewrite it.
func (s *AttendanceService) RegisterArrival(ctx context.Context, req RegisterArrivalRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid arrival payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not active")
	}

	day := s.dayOf(req.Date)
	exists, err := s.repo.ExistsForDay(ctx, student.ID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing arrival")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "arrival already registered for this day")
	}

	cutoff := s.cutoffs.ArrivalCutoff(ctx)
	status, err := report.ClassifyArrival(req.ArrivalTime, cutoff)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid arrival time")
	}

	record := &models.AttendanceRecord{
		StudentID:   student.ID,
		Date:        day,
		ArrivalTime: req.ArrivalTime,
		Status:      status,
	}
	if req.RecordedBy != "" {
		record.RecordedBy = &req.RecordedBy
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create arrival record")
	}

	s.logger.Info("arrival registered",
		zap.String("student_id", student.ID),
		zap.String("status", string(status)),
		zap.String("arrival_time", req.ArrivalTime),
		zap.String("cutoff", cutoff),
	)
	return record, nil
}

// Justify applies the justification transition on an existing record.
func (s *AttendanceService) Justify(ctx context.Context, recordID string, justification models.Justification) (*models.AttendanceRecord, error) {
	if !justification.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "justification must be Justificada or Injustificada")
	}
	if err := s.repo.UpdateJustification(ctx, recordID, justification); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update justification")
	}
	record, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	return record, nil
}

func (s *AttendanceService) dayOf(override *time.Time) time.Time {
	t := s.now().In(s.loc)
	if override != nil {
		t = override.In(s.loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}
