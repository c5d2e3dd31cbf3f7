package models

import "time"

// Configuration keys recognized by the portal.
const (
	ConfigKeyArrivalCutoff = "arrival_cutoff_time"
)

// ConfigValue is one key/value configuration entry.
type ConfigValue struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
