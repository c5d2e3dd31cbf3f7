package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/repository"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
)

type stubIncidentRepo struct {
	created     *models.IncidentRecord
	found       *models.IncidentRecord
	priorActive int
	since       time.Time
	status      models.IncidentStatus
	statusErr   error
}

func (s *stubIncidentRepo) Create(_ context.Context, incident *models.IncidentRecord) error {
	s.created = incident
	return nil
}

func (s *stubIncidentRepo) FindByID(_ context.Context, _ string) (*models.IncidentRecord, error) {
	if s.found == nil {
		return nil, sql.ErrNoRows
	}
	return s.found, nil
}

func (s *stubIncidentRepo) List(_ context.Context, _ models.IncidentFilter) ([]models.IncidentRecord, error) {
	return nil, nil
}

func (s *stubIncidentRepo) CountActiveSince(_ context.Context, _ string, since time.Time) (int, error) {
	s.since = since
	return s.priorActive, nil
}

func (s *stubIncidentRepo) UpdateStatus(_ context.Context, _ string, status models.IncidentStatus) error {
	s.status = status
	return s.statusErr
}

type stubFaultFinder struct {
	fault *models.FaultType
}

func (s *stubFaultFinder) FindByID(_ context.Context, _ string) (*models.FaultType, error) {
	if s.fault == nil {
		return nil, sql.ErrNoRows
	}
	return s.fault, nil
}

func (s *stubFaultFinder) List(_ context.Context, _ bool) ([]models.FaultType, error) {
	if s.fault == nil {
		return nil, nil
	}
	return []models.FaultType{*s.fault}, nil
}

func newTestIncidentService(repo *stubIncidentRepo, students *stubStudentFinder, faults *stubFaultFinder) *IncidentService {
	svc := NewIncidentService(repo, students, faults, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 4, 10, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestRegisterIncidentDenormalizesFault(t *testing.T) {
	repo := &stubIncidentRepo{}
	students := &stubStudentFinder{student: &models.Student{ID: "s1", Active: true}}
	faults := &stubFaultFinder{fault: &models.FaultType{
		ID: "f1", Name: "Tardanza reiterada", Severity: models.SeverityGrave, Points: 10, Active: true,
	}}
	svc := newTestIncidentService(repo, students, faults)

	incident, err := svc.Register(context.Background(), RegisterIncidentRequest{
		StudentID:    "s1",
		FaultTypeID:  "f1",
		Description:  "tercera vez esta semana",
		RegisteredBy: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tardanza reiterada", incident.FaultName)
	assert.Equal(t, models.SeverityGrave, incident.Severity)
	assert.Equal(t, 10, incident.Points)
	assert.Equal(t, models.IncidentActive, incident.Status)
	assert.Same(t, incident, repo.created)

	// the recurrence window looks back 30 days from registration time
	assert.Equal(t, time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC), repo.since)
}

func TestRegisterIncidentRecurrenceLevelCapped(t *testing.T) {
	repo := &stubIncidentRepo{priorActive: 9}
	students := &stubStudentFinder{student: &models.Student{ID: "s1", Active: true}}
	faults := &stubFaultFinder{fault: &models.FaultType{ID: "f1", Name: "Tardanza", Active: true}}
	svc := newTestIncidentService(repo, students, faults)

	incident, err := svc.Register(context.Background(), RegisterIncidentRequest{
		StudentID:   "s1",
		FaultTypeID: "f1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MaxRecurrenceLevel, incident.Level)
}

func TestRegisterIncidentInactiveFault(t *testing.T) {
	students := &stubStudentFinder{student: &models.Student{ID: "s1", Active: true}}
	faults := &stubFaultFinder{fault: &models.FaultType{ID: "f1", Name: "Obsoleta", Active: false}}
	svc := newTestIncidentService(&stubIncidentRepo{}, students, faults)

	_, err := svc.Register(context.Background(), RegisterIncidentRequest{
		StudentID:   "s1",
		FaultTypeID: "f1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterIncidentUnknownFault(t *testing.T) {
	students := &stubStudentFinder{student: &models.Student{ID: "s1", Active: true}}
	svc := newTestIncidentService(&stubIncidentRepo{}, students, &stubFaultFinder{})

	_, err := svc.Register(context.Background(), RegisterIncidentRequest{
		StudentID:   "s1",
		FaultTypeID: "missing",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSetStatus(t *testing.T) {
	repo := &stubIncidentRepo{found: &models.IncidentRecord{ID: "i1", Status: models.IncidentJustified}}
	svc := newTestIncidentService(repo, &stubStudentFinder{}, &stubFaultFinder{})

	incident, err := svc.SetStatus(context.Background(), "i1", models.IncidentJustified)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentJustified, repo.status)
	assert.Equal(t, models.IncidentJustified, incident.Status)
}

func TestSetStatusRejectsActive(t *testing.T) {
	svc := newTestIncidentService(&stubIncidentRepo{}, &stubStudentFinder{}, &stubFaultFinder{})

	_, err := svc.SetStatus(context.Background(), "i1", models.IncidentActive)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSetStatusMissingIncident(t *testing.T) {
	repo := &stubIncidentRepo{statusErr: repository.ErrNoRowsAffected}
	svc := newTestIncidentService(repo, &stubStudentFinder{}, &stubFaultFinder{})

	_, err := svc.SetStatus(context.Background(), "missing", models.IncidentAnnulled)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
