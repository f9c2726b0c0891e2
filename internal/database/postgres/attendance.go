package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/staff-clock/internal/database"
)

const attendanceColumns = `id, staff_id, attendance_date, check_in_time, check_out_time,
	is_late, method, device_id, created_at, updated_at`

// AttendanceRepository persists attendance days.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendanceDay(row rowScanner) (*database.AttendanceDay, error) {
	var d database.AttendanceDay
	var checkOut sql.NullTime
	var method string
	if err := row.Scan(&d.ID, &d.StaffID, &d.Date, &d.CheckInTime, &checkOut,
		&d.IsLate, &method, &d.DeviceID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap
	}
	if checkOut.Valid {
		t := checkOut.Time
		d.CheckOutTime = &t
	}
	d.Method = database.ClockMethod(method)
	y, m, day := d.Date.Date()
	d.Date = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return &d, nil
}

// GetAttendanceDay returns the row for (staff, date), nil if there is none
func (r *AttendanceRepository) GetAttendanceDay(ctx context.Context, staffID string, date time.Time) (*database.AttendanceDay, error) {
	if !isUUID(staffID) {
		return nil, nil
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_days
		WHERE staff_id = $1 AND attendance_date = $2::date
	`, staffID, database.DateKey(date))

	d, err := scanAttendanceDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query attendance day: %w", classifyError(err))
	}
	return d, nil
}

// InsertCheckIn creates the row for (staff, date).
// A second check-in for the same date returns ErrDuplicateKey.
func (r *AttendanceRepository) InsertCheckIn(ctx context.Context, in database.CheckIn) (*database.AttendanceDay, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO attendance_days (staff_id, attendance_date, check_in_time, is_late, method, device_id)
		VALUES ($1, $2::date, $3, $4, $5, $6)
		ON CONFLICT (staff_id, attendance_date) DO NOTHING
		RETURNING `+attendanceColumns,
		in.StaffID, database.DateKey(in.Date), in.Timestamp, in.IsLate, string(in.Method), in.DeviceID)

	d, err := scanAttendanceDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		// ON CONFLICT DO NOTHING returns no row when the day already exists.
		return nil, fmt.Errorf("insert check-in for %s on %s: %w", in.StaffID, database.DateKey(in.Date), database.ErrDuplicateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("insert check-in: %w", classifyError(err))
	}
	return d, nil
}

// UpdateCheckOut sets check_out_time in a single conditional statement.
// Returns ErrNotFound when there is no open row checked in before ts.
func (r *AttendanceRepository) UpdateCheckOut(ctx context.Context, staffID string, date, ts time.Time) (*database.AttendanceDay, error) {
	if !isUUID(staffID) {
		return nil, database.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE attendance_days
		SET check_out_time = $3, updated_at = NOW()
		WHERE staff_id = $1
			AND attendance_date = $2::date
			AND check_out_time IS NULL
			AND check_in_time < $3
		RETURNING `+attendanceColumns,
		staffID, database.DateKey(date), ts)

	d, err := scanAttendanceDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update check-out for %s on %s: %w", staffID, database.DateKey(date), database.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update check-out: %w", classifyError(err))
	}
	return d, nil
}

// ListAttendanceByDate returns all rows for one date ordered by check-in time
func (r *AttendanceRepository) ListAttendanceByDate(ctx context.Context, date time.Time) ([]database.AttendanceDay, error) {
	return r.ListAttendanceBetween(ctx, "", date, date)
}

// ListAttendanceBetween returns rows with from <= date <= to, optionally for one staff member
func (r *AttendanceRepository) ListAttendanceBetween(ctx context.Context, staffID string, from, to time.Time) ([]database.AttendanceDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_days
		WHERE attendance_date BETWEEN $1::date AND $2::date
			AND ($3::uuid IS NULL OR staff_id = $3::uuid)
		ORDER BY attendance_date, check_in_time
	`, database.DateKey(from), database.DateKey(to), nullableUUID(staffID))
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var out []database.AttendanceDay
	for rows.Next() {
		d, err := scanAttendanceDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance day: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", classifyError(err))
	}
	return out, nil
}
