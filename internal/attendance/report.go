package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kozaktomas/staff-clock/internal/database"
)

// TodayEntry is one staff member's state for today.
type TodayEntry struct {
	StaffID      string     `json:"staff_id"`
	StaffNumber  string     `json:"staff_number,omitempty"`
	StaffName    string     `json:"staff_name,omitempty"`
	State        string     `json:"state"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	IsLate       bool       `json:"is_late"`
	Method       string     `json:"method,omitempty"`
}

type TodayReport struct {
	Date       string       `json:"date"`
	Present    int          `json:"present"`
	Late       int          `json:"late"`
	CheckedOut int          `json:"checked_out"`
	Absent     int          `json:"absent"`
	Entries    []TodayEntry `json:"entries"`
}

// StaffStats aggregates one staff member's month.
type StaffStats struct {
	StaffID        string  `json:"staff_id"`
	StaffName      string  `json:"staff_name,omitempty"`
	DaysPresent    int     `json:"days_present"`
	DaysLate       int     `json:"days_late"`
	DaysCheckedOut int     `json:"days_checked_out"`
	AverageCheckIn string  `json:"average_check_in,omitempty"` // HH:MM in the policy zone
	HoursWorked    float64 `json:"hours_worked"`
}

type MonthlyStats struct {
	Month string       `json:"month"`
	Staff []StaffStats `json:"staff"`
}

// Today lists every active staff member with their attendance for the current date.
func (s *Service) Today(ctx context.Context) (*TodayReport, error) {
	policy := s.CurrentPolicy(ctx)
	date := policy.Date(s.now())

	days, err := s.stores.Attendance.ListAttendanceByDate(ctx, date)
	if err != nil {
		return nil, classify(ctx, "listing attendance", err)
	}
	byStaff := make(map[string]*database.AttendanceDay, len(days))
	for i := range days {
		byStaff[days[i].StaffID] = &days[i]
	}

	staff, err := s.stores.Staff.ListStaff(ctx, true)
	if err != nil {
		return nil, classify(ctx, "listing staff", err)
	}

	report := &TodayReport{Date: database.DateKey(date), Entries: make([]TodayEntry, 0, len(staff))}
	seen := make(map[string]bool, len(staff))
	for _, m := range staff {
		seen[m.ID] = true
		report.add(todayEntry(m.ID, m.StaffNumber, m.FullName, byStaff[m.ID]))
	}
	// Rows of staff deactivated later in the day still count.
	for i := range days {
		if !seen[days[i].StaffID] {
			report.add(todayEntry(days[i].StaffID, "", "", &days[i]))
		}
	}
	return report, nil
}

func todayEntry(id, number, name string, day *database.AttendanceDay) TodayEntry {
	e := TodayEntry{
		StaffID:     id,
		StaffNumber: number,
		StaffName:   name,
		State:       StateOf(day).String(),
	}
	if day != nil {
		in := day.CheckInTime
		e.CheckInTime = &in
		e.CheckOutTime = day.CheckOutTime
		e.IsLate = day.IsLate
		e.Method = string(day.Method)
	}
	return e
}

func (r *TodayReport) add(e TodayEntry) {
	switch e.State {
	case NotStarted.String():
		r.Absent++
	case CheckedOut.String():
		r.Present++
		r.CheckedOut++
	default:
		r.Present++
	}
	if e.IsLate {
		r.Late++
	}
	r.Entries = append(r.Entries, e)
}

// Stats aggregates attendance for month ("YYYY-MM", empty for the current month).
// An empty staffID covers everyone.
func (s *Service) Stats(ctx context.Context, month, staffID string) (*MonthlyStats, error) {
	policy := s.CurrentPolicy(ctx)
	var first time.Time
	if month == "" {
		today := policy.Date(s.now())
		first = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		t, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, fmt.Errorf("%w: month %q is not YYYY-MM", ErrInvalidInput, month)
		}
		first = t
	}
	last := first.AddDate(0, 1, -1)

	days, err := s.stores.Attendance.ListAttendanceBetween(ctx, staffID, first, last)
	if err != nil {
		return nil, classify(ctx, "listing attendance", err)
	}

	names := map[string]string{}
	if s.stores.Staff != nil {
		if staff, err := s.stores.Staff.ListStaff(ctx, false); err == nil {
			for _, m := range staff {
				names[m.ID] = m.FullName
			}
		}
	}

	return &MonthlyStats{
		Month: first.Format("2006-01"),
		Staff: aggregate(days, names, policy.location()),
	}, nil
}

func aggregate(days []database.AttendanceDay, names map[string]string, loc *time.Location) []StaffStats {
	type acc struct {
		stats      StaffStats
		checkInSum time.Duration
	}
	byStaff := map[string]*acc{}
	for _, d := range days {
		a, ok := byStaff[d.StaffID]
		if !ok {
			a = &acc{stats: StaffStats{StaffID: d.StaffID, StaffName: names[d.StaffID]}}
			byStaff[d.StaffID] = a
		}
		a.stats.DaysPresent++
		if d.IsLate {
			a.stats.DaysLate++
		}
		if d.CheckOutTime != nil {
			a.stats.DaysCheckedOut++
			a.stats.HoursWorked += d.CheckOutTime.Sub(d.CheckInTime).Hours()
		}
		local := d.CheckInTime.In(loc)
		a.checkInSum += time.Duration(local.Hour())*time.Hour + time.Duration(local.Minute())*time.Minute
	}

	out := make([]StaffStats, 0, len(byStaff))
	for _, a := range byStaff {
		avg := a.checkInSum / time.Duration(a.stats.DaysPresent)
		a.stats.AverageCheckIn = fmt.Sprintf("%02d:%02d", int(avg.Hours()), int(avg.Minutes())%60)
		a.stats.HoursWorked = float64(int(a.stats.HoursWorked*100+0.5)) / 100
		out = append(out, a.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffID < out[j].StaffID })
	return out
}
