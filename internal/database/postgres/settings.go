package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kozaktomas/staff-clock/internal/database"
)

const (
	settingWorkStart     = "work_start_time"
	settingLateThreshold = "late_threshold_minutes"
	settingTimezone      = "timezone"
)

// SettingsRepository stores the attendance policy as key/value rows.
type SettingsRepository struct {
	pool *Pool
}

// NewSettingsRepository creates a new PostgreSQL settings repository
func NewSettingsRepository(pool *Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetSettings returns the stored settings, nil if none were saved yet
func (r *SettingsRepository) GetSettings(ctx context.Context) (*database.Settings, error) {
	rows, err := r.pool.Query(ctx, "SELECT key, value, updated_at FROM app_settings")
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	var s database.Settings
	found := false
	for rows.Next() {
		var key, value string
		var updated time.Time
		if err := rows.Scan(&key, &value, &updated); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		switch key {
		case settingWorkStart:
			s.WorkStartTime = value
		case settingLateThreshold:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("setting %s=%q: %w", key, value, err)
			}
			s.LateThresholdMinutes = n
		case settingTimezone:
			s.Timezone = value
		default:
			continue
		}
		found = true
		if updated.After(s.UpdatedAt) {
			s.UpdatedAt = updated
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", classifyError(err))
	}
	if !found {
		return nil, nil
	}
	return &s, nil
}

// SaveSettings replaces all settings in one transaction
func (r *SettingsRepository) SaveSettings(ctx context.Context, s database.Settings) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	values := map[string]string{
		settingWorkStart:     s.WorkStartTime,
		settingLateThreshold: strconv.Itoa(s.LateThresholdMinutes),
		settingTimezone:      s.Timezone,
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO app_settings (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, key, value); err != nil {
			return fmt.Errorf("save setting %s: %w", key, classifyError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", classifyError(err))
	}
	return nil
}
