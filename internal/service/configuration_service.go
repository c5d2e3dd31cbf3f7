package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/pkg/config"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
)

type configurationRepository interface {
	Get(ctx context.Context, key string) (*models.ConfigValue, error)
	Set(ctx context.Context, key, value string) error
}

// ConfigurationService exposes portal configuration values with fallbacks.
type ConfigurationService struct {
	repo     configurationRepository
	fallback string
	logger   *zap.Logger
}

// NewConfigurationService constructs the service. cutoffFallback is used
// when the store has no arrival cutoff entry; empty means the compiled-in
// default.
func NewConfigurationService(repo configurationRepository, cutoffFallback string, logger *zap.Logger) *ConfigurationService {
	if cutoffFallback == "" {
		cutoffFallback = config.DefaultArrivalCutoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigurationService{repo: repo, fallback: cutoffFallback, logger: logger}
}

// ArrivalCutoff returns the configured HH:MM cutoff, falling back when the
// store has no entry. A store failure also falls back, so an unavailable
// configuration table never blocks arrival registration.
func (s *ConfigurationService) ArrivalCutoff(ctx context.Context) string {
	value, err := s.repo.Get(ctx, models.ConfigKeyArrivalCutoff)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to read arrival cutoff, using fallback",
				zap.String("fallback", s.fallback), zap.Error(err))
		}
		return s.fallback
	}
	if value.Value == "" {
		return s.fallback
	}
	return value.Value
}

// SetArrivalCutoff stores a new cutoff time. Only future records are
// classified against it; history keeps its stored statuses.
func (s *ConfigurationService) SetArrivalCutoff(ctx context.Context, cutoff string) error {
	if err := s.repo.Set(ctx, models.ConfigKeyArrivalCutoff, cutoff); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store arrival cutoff")
	}
	return nil
}
