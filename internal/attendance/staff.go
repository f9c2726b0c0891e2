package attendance

import (
	"context"
	"fmt"

	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/facematch"
	"github.com/kozaktomas/staff-clock/internal/pin"
)

// ListStaff returns the roster, filtered by a free-text name query when query is non-empty.
func (s *Service) ListStaff(ctx context.Context, query string, activeOnly bool) ([]database.StaffMember, error) {
	all, err := s.stores.Staff.ListStaff(ctx, activeOnly)
	if err != nil {
		return nil, classify(ctx, "listing staff", err)
	}
	if query == "" {
		return all, nil
	}
	out := make([]database.StaffMember, 0, len(all))
	for _, m := range all {
		if facematch.NameMatchesQuery(m.FullName, query) || m.StaffNumber == query {
			out = append(out, m)
		}
	}
	return out, nil
}

// GetStaff returns one staff member, ErrUnknownStaff if missing.
func (s *Service) GetStaff(ctx context.Context, id string) (*database.StaffMember, error) {
	member, err := s.stores.Staff.GetStaff(ctx, id)
	if err != nil {
		return nil, classify(ctx, "looking up staff", err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStaff, id)
	}
	return member, nil
}

// SetPin stores a new PIN for a staff member.
func (s *Service) SetPin(ctx context.Context, staffID, p string) error {
	if err := s.requireActiveStaff(ctx, staffID); err != nil {
		return err
	}
	hash, err := pin.Hash(p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.stores.Staff.SetPinHash(ctx, staffID, hash); err != nil {
		return classify(ctx, "storing PIN", err)
	}
	s.audit(ctx, database.AuditPinSet, staffID, nil)
	return nil
}

// DeactivateStaff marks a staff member inactive and removes their face enrollment.
func (s *Service) DeactivateStaff(ctx context.Context, staffID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.stores.Staff.DeactivateStaff(ctx, staffID); err != nil {
		return classify(ctx, "deactivating staff", err)
	}
	s.cache.Invalidate()
	s.audit(ctx, database.AuditDeactivate, staffID, nil)
	return nil
}

// SyncRoster copies the roster from the school management system.
// progress, if set, is called after each staff member.
func (s *Service) SyncRoster(ctx context.Context, src database.RosterSource, progress func(done, total int)) (int, error) {
	roster, err := src.ListRoster(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading roster: %w", err)
	}

	synced := 0
	for i, member := range roster {
		if member.StaffNumber == "" {
			continue
		}
		id, err := s.stores.Staff.UpsertStaff(ctx, member)
		if err != nil {
			return synced, classify(ctx, "saving staff "+member.StaffNumber, err)
		}
		if !member.IsActive {
			// Left the school: drop the enrollment too.
			if err := s.stores.Staff.DeactivateStaff(ctx, id); err != nil {
				return synced, classify(ctx, "deactivating staff "+member.StaffNumber, err)
			}
			s.cache.Invalidate()
		}
		synced++
		if progress != nil {
			progress(i+1, len(roster))
		}
	}

	s.audit(ctx, database.AuditStaffSync, "", map[string]any{"synced": synced, "total": len(roster)})
	return synced, nil
}
