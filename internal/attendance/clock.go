package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/facematch"
	"github.com/kozaktomas/staff-clock/internal/pin"
)

// ClockResult describes a recorded clock event, or the match that failed to produce one.
type ClockResult struct {
	StaffID   string                  `json:"staff_id,omitempty"`
	StaffName string                  `json:"staff_name,omitempty"`
	ClockType ClockType               `json:"clock_type"`
	Day       *database.AttendanceDay `json:"-"`
	Match     *facematch.MatchResult  `json:"match,omitempty"`
}

// ClockFace matches probe against the enrolled staff and records the event for the match.
// The timestamp is always the server clock.
func (s *Service) ClockFace(ctx context.Context, probe []float32, ct ClockType, deviceID string) (*ClockResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.clockFace(ctx, probe, ct, deviceID)
}

// ClockFaceImage extracts the embedding from a camera frame and then behaves like ClockFace.
func (s *Service) ClockFaceImage(ctx context.Context, image []byte, ct ClockType, deviceID string) (*ClockResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	probe, err := s.embed(ctx, image)
	if err != nil {
		return &ClockResult{ClockType: ct}, err
	}
	return s.clockFace(ctx, probe, ct, deviceID)
}

func (s *Service) clockFace(ctx context.Context, probe []float32, ct ClockType, deviceID string) (*ClockResult, error) {
	result := &ClockResult{ClockType: ct}
	if _, err := ParseClockType(string(ct)); err != nil {
		return result, err
	}
	if len(probe) != s.dim {
		return result, fmt.Errorf("%w: probe has %d values, expected %d", ErrInvalidInput, len(probe), s.dim)
	}

	enrolled, err := s.cache.Snapshot(ctx)
	if err != nil {
		return result, classify(ctx, "loading enrollments", err)
	}
	candidates := make([]facematch.Candidate, len(enrolled))
	for i, e := range enrolled {
		candidates[i] = facematch.Candidate{ID: e.StaffID, Embedding: e.Embedding}
	}

	match, err := s.matcher.Match(probe, candidates)
	if err != nil {
		return result, err
	}
	result.Match = &match
	if !match.Accepted {
		s.audit(ctx, database.AuditClockFailed, "", map[string]any{
			"method":    database.MethodFace,
			"decision":  match.Decision,
			"distance":  match.Distance,
			"device_id": deviceID,
		})
		return result, match.Err()
	}

	result.StaffID = match.StaffID
	result.StaffName = s.staffName(ctx, match.StaffID)
	day, err := s.record(ctx, match.StaffID, ct, s.now(), database.MethodFace, deviceID)
	if err != nil {
		return result, err
	}
	result.Day = day
	return result, nil
}

// ClockPin is the fallback when face matching fails: the staff member types their number and PIN.
func (s *Service) ClockPin(ctx context.Context, staffNumber, p string, ct ClockType) (*ClockResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := &ClockResult{ClockType: ct}
	if _, err := ParseClockType(string(ct)); err != nil {
		return result, err
	}

	member, err := s.stores.Staff.GetStaffByNumber(ctx, staffNumber)
	if err != nil {
		return result, classify(ctx, "looking up staff", err)
	}
	if member == nil || !member.IsActive || !pin.Verify(member.PinHash, p) {
		s.audit(ctx, database.AuditClockFailed, "", map[string]any{
			"method":       database.MethodPin,
			"staff_number": staffNumber,
		})
		return result, ErrInvalidCredentials
	}

	result.StaffID = member.ID
	result.StaffName = member.FullName
	day, err := s.record(ctx, member.ID, ct, s.now(), database.MethodPin, "")
	if err != nil {
		return result, err
	}
	result.Day = day
	return result, nil
}

// record validates and persists one clock event. Check-in uniqueness is
// enforced by the store; the read before the write only produces a clearer error.
func (s *Service) record(ctx context.Context, staffID string, ct ClockType, ts time.Time, method database.ClockMethod, deviceID string) (*database.AttendanceDay, error) {
	policy := s.CurrentPolicy(ctx)
	date := policy.Date(ts)

	current, err := s.stores.Attendance.GetAttendanceDay(ctx, staffID, date)
	if err != nil {
		return nil, classify(ctx, "reading attendance", err)
	}
	if err := Transition(current, ct, ts); err != nil {
		return nil, err
	}

	var day *database.AttendanceDay
	switch ct {
	case ClockIn:
		day, err = s.stores.Attendance.InsertCheckIn(ctx, database.CheckIn{
			StaffID:   staffID,
			Date:      date,
			Timestamp: ts,
			IsLate:    policy.IsLate(ts),
			Method:    method,
			DeviceID:  deviceID,
		})
		if errors.Is(err, database.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyCheckedIn, err)
		}
	case ClockOut:
		day, err = s.stores.Attendance.UpdateCheckOut(ctx, staffID, date, ts)
		if errors.Is(err, database.ErrNotFound) {
			return nil, s.classifyCheckOut(ctx, staffID, date, ts)
		}
	}
	if err != nil {
		return nil, classify(ctx, "recording "+string(ct), err)
	}

	action := database.AuditClockIn
	if ct == ClockOut {
		action = database.AuditClockOut
	}
	s.audit(ctx, action, staffID, map[string]any{
		"method":    method,
		"device_id": deviceID,
		"is_late":   day.IsLate,
		"timestamp": ts.UTC().Format(time.RFC3339),
	})
	return day, nil
}

// classifyCheckOut explains why a conditional check-out matched no row.
func (s *Service) classifyCheckOut(ctx context.Context, staffID string, date, ts time.Time) error {
	current, err := s.stores.Attendance.GetAttendanceDay(ctx, staffID, date)
	if err != nil {
		return classify(ctx, "reading attendance", err)
	}
	if err := Transition(current, ClockOut, ts); err != nil {
		return err
	}
	return fmt.Errorf("recording check_out: %w", database.ErrNotFound)
}

func (s *Service) staffName(ctx context.Context, staffID string) string {
	if s.stores.Staff == nil {
		return ""
	}
	member, err := s.stores.Staff.GetStaff(ctx, staffID)
	if err != nil || member == nil {
		return ""
	}
	return member.FullName
}

func (s *Service) embed(ctx context.Context, image []byte) ([]float32, error) {
	if s.embedder == nil {
		return nil, errors.New("no embedding service configured")
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	embedding, _, err := s.embedder.EmbedFace(ctx, image)
	if err != nil {
		return nil, classify(ctx, "extracting face embedding", err)
	}
	return embedding, nil
}
