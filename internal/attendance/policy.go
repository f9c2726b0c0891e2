package attendance

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kozaktomas/staff-clock/internal/database"
)

// Policy decides lateness and calendar dates.
type Policy struct {
	WorkStart time.Duration // offset from local midnight
	Grace     time.Duration
	Location  *time.Location
}

// NewPolicy builds a policy from "HH:MM", grace minutes and an IANA zone name.
func NewPolicy(workStart string, graceMinutes int, timezone string) (Policy, error) {
	start, err := ParseWorkStart(workStart)
	if err != nil {
		return Policy{}, err
	}
	if graceMinutes < 0 || graceMinutes > 24*60 {
		return Policy{}, fmt.Errorf("%w: grace minutes %d out of range", ErrInvalidInput, graceMinutes)
	}
	loc := time.UTC
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return Policy{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
		}
	}
	return Policy{
		WorkStart: start,
		Grace:     time.Duration(graceMinutes) * time.Minute,
		Location:  loc,
	}, nil
}

// ParseWorkStart parses "HH:MM" (24h) into an offset from midnight.
func ParseWorkStart(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: work start %q is not HH:MM", ErrInvalidInput, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Date returns the calendar date of t in the policy location, as 00:00 UTC of that date.
func (p Policy) Date(t time.Time) time.Time {
	y, m, d := t.In(p.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsLate reports whether the time of day of t is strictly after WorkStart + Grace.
func (p Policy) IsLate(t time.Time) bool {
	local := t.In(p.location())
	// Wall-clock offset, so a DST change earlier in the day does not shift the cutoff.
	sinceMidnight := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())
	return sinceMidnight > p.WorkStart+p.Grace
}

// Settings converts the policy back to its stored form.
func (p Policy) Settings() database.Settings {
	return database.Settings{
		WorkStartTime:        fmt.Sprintf("%02d:%02d", int(p.WorkStart.Hours()), int(p.WorkStart.Minutes())%60),
		LateThresholdMinutes: int(p.Grace.Minutes()),
		Timezone:             p.location().String(),
	}
}
