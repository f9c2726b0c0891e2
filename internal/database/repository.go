package database

import (
	"context"
	"time"
)

// EnrollmentReader provides read-only access to enrolled face embeddings
type EnrollmentReader interface {
	// ListEnrollments returns every enrolled (staff id, embedding) pair
	ListEnrollments(ctx context.Context) ([]StoredEnrollment, error)
	// GetEnrollment returns the enrollment of one staff member, nil if not enrolled
	GetEnrollment(ctx context.Context, staffID string) (*StoredEnrollment, error)
	// CountEnrollments returns the number of enrolled staff members
	CountEnrollments(ctx context.Context) (int, error)
}

// EnrollmentWriter provides write access to enrolled face embeddings
type EnrollmentWriter interface {
	EnrollmentReader

	// UpsertEnrollment stores the embedding of a staff member, replacing any previous one
	UpsertEnrollment(ctx context.Context, staffID string, embedding []float32, model string) error
	// DeleteEnrollment removes the embedding of a staff member. Deleting a missing enrollment is not an error.
	DeleteEnrollment(ctx context.Context, staffID string) error
}

// AttendanceReader provides read-only access to attendance days
type AttendanceReader interface {
	// GetAttendanceDay returns the row for (staff, date), or nil, nil when there is none
	GetAttendanceDay(ctx context.Context, staffID string, date time.Time) (*AttendanceDay, error)
	// ListAttendanceByDate returns all rows for one calendar date ordered by check-in time
	ListAttendanceByDate(ctx context.Context, date time.Time) ([]AttendanceDay, error)
	// ListAttendanceBetween returns rows with from <= date <= to, optionally for one staff member
	ListAttendanceBetween(ctx context.Context, staffID string, from, to time.Time) ([]AttendanceDay, error)
}

// AttendanceWriter provides write access to attendance days
type AttendanceWriter interface {
	AttendanceReader

	// InsertCheckIn creates the row for (staff, date). Returns ErrDuplicateKey if it already exists.
	InsertCheckIn(ctx context.Context, in CheckIn) (*AttendanceDay, error)
	// UpdateCheckOut sets check_out_time on a row that has none and whose check-in is before ts.
	// Returns ErrNotFound when no row qualifies.
	UpdateCheckOut(ctx context.Context, staffID string, date, ts time.Time) (*AttendanceDay, error)
}

// StaffReader provides read-only access to the staff roster
type StaffReader interface {
	// GetStaff returns a staff member by id, nil if not found
	GetStaff(ctx context.Context, id string) (*StaffMember, error)
	// GetStaffByNumber returns a staff member by school-issued number, nil if not found
	GetStaffByNumber(ctx context.Context, staffNumber string) (*StaffMember, error)
	// ListStaff returns the roster ordered by name
	ListStaff(ctx context.Context, activeOnly bool) ([]StaffMember, error)
}

// StaffWriter provides write access to the staff roster
type StaffWriter interface {
	StaffReader

	// UpsertStaff inserts or updates a staff member keyed by staff number and returns its id
	UpsertStaff(ctx context.Context, member StaffMember) (string, error)
	// SetPinHash stores the bcrypt hash of a staff member's PIN
	SetPinHash(ctx context.Context, id, pinHash string) error
	// DeactivateStaff marks a staff member inactive and removes the enrollment in one transaction
	DeactivateStaff(ctx context.Context, id string) error
}

// AuditWriter appends to and reads the audit log
type AuditWriter interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]AuditEntry, error)
}

// SettingsStore persists the attendance policy
type SettingsStore interface {
	// GetSettings returns the stored settings, nil if none were saved yet
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}

// RosterSource reads staff from the school management system
type RosterSource interface {
	ListRoster(ctx context.Context) ([]StaffMember, error)
}
