package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/colegio-sanjuan/portal-api/internal/models"
)

// ConfigurationRepository reads and writes portal configuration values.
type ConfigurationRepository struct {
	db *sqlx.DB
}

// NewConfigurationRepository constructs a new repository.
func NewConfigurationRepository(db *sqlx.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

// Get returns one configuration entry by key.
func (r *ConfigurationRepository) Get(ctx context.Context, key string) (*models.ConfigValue, error) {
	var value models.ConfigValue
	query := "SELECT key, value, updated_at FROM configuration WHERE key = $1"
	if err := r.db.GetContext(ctx, &value, query, key); err != nil {
		return nil, err
	}
	return &value, nil
}

// Set upserts one configuration entry.
func (r *ConfigurationRepository) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO configuration (key, value, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set configuration %s: %w", key, err)
	}
	return nil
}
