package attendance

import (
	"context"
	"log"

	"github.com/kozaktomas/staff-clock/internal/database"
)

// CurrentPolicy returns the stored policy, or the configured default when none
// is stored or the settings cannot be read.
func (s *Service) CurrentPolicy(ctx context.Context) Policy {
	if s.stores.Settings == nil {
		return s.policy
	}
	stored, err := s.stores.Settings.GetSettings(ctx)
	if err != nil {
		log.Printf("Warning: failed to read settings, using defaults: %v", err)
		return s.policy
	}
	if stored == nil {
		return s.policy
	}
	p, err := NewPolicy(stored.WorkStartTime, stored.LateThresholdMinutes, stored.Timezone)
	if err != nil {
		log.Printf("Warning: stored settings are invalid, using defaults: %v", err)
		return s.policy
	}
	return p
}

// UpdateSettings validates and persists a new policy.
func (s *Service) UpdateSettings(ctx context.Context, settings database.Settings) (Policy, error) {
	p, err := NewPolicy(settings.WorkStartTime, settings.LateThresholdMinutes, settings.Timezone)
	if err != nil {
		return Policy{}, err
	}
	if s.stores.Settings == nil {
		return Policy{}, ErrStoreUnavailable
	}
	if err := s.stores.Settings.SaveSettings(ctx, p.Settings()); err != nil {
		return Policy{}, classify(ctx, "saving settings", err)
	}
	s.audit(ctx, database.AuditSettingsSave, "", map[string]any{
		"work_start_time":        settings.WorkStartTime,
		"late_threshold_minutes": settings.LateThresholdMinutes,
		"timezone":               settings.Timezone,
	})
	return p, nil
}
