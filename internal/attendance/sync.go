package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/staff-clock/internal/constants"
	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/pin"
)

// DeviceRecord is one clock event captured offline by a fingerprint terminal.
// StaffID may be the staff number or the internal id.
type DeviceRecord struct {
	StaffID   string    `json:"staff_id" validate:"required"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Action    string    `json:"action" validate:"required,oneof=check_in check_out clock_in clock_out"`
	PIN       string    `json:"pin,omitempty"`
}

// SyncResult reports a device batch. Each record succeeds or fails on its own.
type SyncResult struct {
	BatchID string   `json:"batch_id"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// SyncDevice applies a batch of device records in timestamp order. Device timestamps
// are trusted because the terminals record offline and upload later.
// progress, if set, is called after each record.
func (s *Service) SyncDevice(ctx context.Context, deviceID string, records []DeviceRecord, progress func(done, total int)) SyncResult {
	result := SyncResult{
		BatchID: uuid.New().String(),
		Errors:  []string{},
	}

	ordered := make([]int, len(records))
	for i := range ordered {
		ordered[i] = i
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return records[ordered[a]].Timestamp.Before(records[ordered[b]].Timestamp)
	})

	for n, i := range ordered {
		if err := s.syncRecord(ctx, deviceID, records[i]); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("record %d (%s): %v", i, records[i].StaffID, err))
		} else {
			result.Success++
		}
		if progress != nil {
			progress(n+1, len(records))
		}
	}

	s.audit(ctx, database.AuditDeviceSync, "", map[string]any{
		"device_id": deviceID,
		"batch_id":  result.BatchID,
		"success":   result.Success,
		"failed":    result.Failed,
	})
	return result
}

func (s *Service) syncRecord(ctx context.Context, deviceID string, rec DeviceRecord) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if rec.StaffID == "" {
		return fmt.Errorf("%w: staff_id is required", ErrInvalidInput)
	}
	if rec.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidInput)
	}
	if rec.Timestamp.After(s.now().Add(constants.MaxDeviceClockSkew)) {
		return fmt.Errorf("%w: timestamp %s is in the future", ErrInvalidInput, rec.Timestamp.Format(time.RFC3339))
	}
	ct, err := ParseClockType(rec.Action)
	if err != nil {
		return err
	}

	member, err := s.resolveStaff(ctx, rec.StaffID)
	if err != nil {
		return err
	}
	if rec.PIN != "" && !pin.Verify(member.PinHash, rec.PIN) {
		return ErrInvalidCredentials
	}

	_, err = s.record(ctx, member.ID, ct, rec.Timestamp, database.MethodFingerprint, deviceID)
	return err
}

// resolveStaff finds an active staff member by staff number, then by id.
func (s *Service) resolveStaff(ctx context.Context, ref string) (*database.StaffMember, error) {
	member, err := s.stores.Staff.GetStaffByNumber(ctx, ref)
	if err != nil {
		return nil, classify(ctx, "looking up staff", err)
	}
	if member == nil {
		if _, perr := uuid.Parse(ref); perr == nil {
			member, err = s.stores.Staff.GetStaff(ctx, ref)
			if err != nil {
				return nil, classify(ctx, "looking up staff", err)
			}
		}
	}
	if member == nil || !member.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStaff, ref)
	}
	return member, nil
}
