package attendance

import (
	"fmt"
	"time"

	"github.com/kozaktomas/staff-clock/internal/database"
)

// State is where a staff member is in their attendance day.
type State int

const (
	NotStarted State = iota
	CheckedIn
	CheckedOut
)

func (s State) String() string {
	switch s {
	case CheckedIn:
		return "checked_in"
	case CheckedOut:
		return "checked_out"
	default:
		return "not_started"
	}
}

// ClockType is the requested clock event.
type ClockType string

const (
	ClockIn  ClockType = "check_in"
	ClockOut ClockType = "check_out"
)

// ParseClockType accepts check_in/check_out and the device spellings clock_in/clock_out.
func ParseClockType(s string) (ClockType, error) {
	switch s {
	case "check_in", "clock_in", "in":
		return ClockIn, nil
	case "check_out", "clock_out", "out":
		return ClockOut, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidClockType, s)
}

// StateOf derives the state from the stored row. A nil row is NotStarted.
func StateOf(day *database.AttendanceDay) State {
	switch {
	case day == nil:
		return NotStarted
	case day.CheckOutTime != nil:
		return CheckedOut
	default:
		return CheckedIn
	}
}

// Transition validates a clock event at now against the current row.
// It never mutates day.
func Transition(day *database.AttendanceDay, ct ClockType, now time.Time) error {
	state := StateOf(day)
	switch ct {
	case ClockIn:
		if state != NotStarted {
			return ErrAlreadyCheckedIn
		}
		return nil
	case ClockOut:
		switch state {
		case NotStarted:
			return ErrNoCheckInFound
		case CheckedOut:
			return ErrAlreadyCheckedOut
		}
		if !now.After(day.CheckInTime) {
			return ErrOutOfOrder
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidClockType, ct)
}
