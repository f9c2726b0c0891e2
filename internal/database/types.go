package database

import (
	"time"
)

// ClockMethod records how a staff member was identified for a clock event.
type ClockMethod string

const (
	MethodPin         ClockMethod = "pin"
	MethodFace        ClockMethod = "face"
	MethodFingerprint ClockMethod = "fingerprint"
)

// Valid reports whether m is one of the known clock methods.
func (m ClockMethod) Valid() bool {
	switch m {
	case MethodPin, MethodFace, MethodFingerprint:
		return true
	}
	return false
}

// StoredEnrollment is the reference face embedding of one staff member.
// There is at most one per staff member; re-enrollment overwrites it.
type StoredEnrollment struct {
	StaffID    string
	Embedding  []float32
	Model      string
	EnrolledAt time.Time
}

// AttendanceDay is the single attendance row of a staff member for one calendar date.
type AttendanceDay struct {
	ID           string
	StaffID      string
	Date         time.Time // calendar date at 00:00 UTC
	CheckInTime  time.Time
	CheckOutTime *time.Time
	IsLate       bool
	Method       ClockMethod
	DeviceID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CheckIn is the write model for the first clock event of a day.
type CheckIn struct {
	StaffID   string
	Date      time.Time
	Timestamp time.Time
	IsLate    bool
	Method    ClockMethod
	DeviceID  string
}

// StaffMember is a row of the staff roster.
type StaffMember struct {
	ID          string
	StaffNumber string // school-issued number, used for PIN clock-in and device logs
	FullName    string
	Email       string
	Department  string
	Position    string
	PinHash     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AuditEntry is one append-only audit log record.
type AuditEntry struct {
	ID        string
	Action    string
	StaffID   string
	Details   map[string]any
	CreatedAt time.Time
}

// Audit actions
const (
	AuditClockIn      = "clock_in"
	AuditClockOut     = "clock_out"
	AuditClockFailed  = "clock_failed"
	AuditEnroll       = "face_enroll"
	AuditUnenroll     = "face_unenroll"
	AuditDeviceSync   = "device_sync"
	AuditStaffSync    = "staff_sync"
	AuditDeactivate   = "staff_deactivate"
	AuditPinSet       = "pin_set"
	AuditSettingsSave = "settings_update"
)

// Settings holds the attendance policy persisted in app_settings.
type Settings struct {
	WorkStartTime        string // "HH:MM"
	LateThresholdMinutes int
	Timezone             string
	UpdatedAt            time.Time
}

// DateKey formats a calendar date as YYYY-MM-DD.
func DateKey(d time.Time) string {
	return d.Format("2006-01-02")
}
