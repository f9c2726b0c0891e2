package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/staff-clock/internal/database"
)

const staffColumns = `id, staff_number, full_name, email, department, position,
	pin_hash, is_active, created_at, updated_at`

// StaffRepository persists the staff roster.
type StaffRepository struct {
	pool *Pool
}

// NewStaffRepository creates a new PostgreSQL staff repository
func NewStaffRepository(pool *Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

func scanStaff(row rowScanner) (*database.StaffMember, error) {
	var m database.StaffMember
	if err := row.Scan(&m.ID, &m.StaffNumber, &m.FullName, &m.Email, &m.Department,
		&m.Position, &m.PinHash, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap
	}
	return &m, nil
}

// GetStaff returns a staff member by id, nil if not found
func (r *StaffRepository) GetStaff(ctx context.Context, id string) (*database.StaffMember, error) {
	if !isUUID(id) {
		return nil, nil
	}
	m, err := scanStaff(r.pool.QueryRow(ctx, "SELECT "+staffColumns+" FROM staff WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", classifyError(err))
	}
	return m, nil
}

// GetStaffByNumber returns a staff member by school-issued number, nil if not found
func (r *StaffRepository) GetStaffByNumber(ctx context.Context, staffNumber string) (*database.StaffMember, error) {
	m, err := scanStaff(r.pool.QueryRow(ctx, "SELECT "+staffColumns+" FROM staff WHERE staff_number = $1", staffNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query staff by number: %w", classifyError(err))
	}
	return m, nil
}

// ListStaff returns the roster ordered by name
func (r *StaffRepository) ListStaff(ctx context.Context, activeOnly bool) ([]database.StaffMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE is_active OR NOT $1
		ORDER BY full_name, staff_number
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	defer rows.Close()

	var out []database.StaffMember
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff: %w", classifyError(err))
	}
	return out, nil
}

// UpsertStaff inserts or updates a staff member keyed by staff number.
// The PIN hash is never overwritten by a roster sync.
func (r *StaffRepository) UpsertStaff(ctx context.Context, member database.StaffMember) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO staff (staff_number, full_name, email, department, position, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (staff_number) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			department = EXCLUDED.department,
			position = EXCLUDED.position,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id
	`, member.StaffNumber, member.FullName, member.Email, member.Department,
		member.Position, member.IsActive).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert staff %s: %w", member.StaffNumber, classifyError(err))
	}
	return id, nil
}

// SetPinHash stores the bcrypt hash of a staff member's PIN
func (r *StaffRepository) SetPinHash(ctx context.Context, id, pinHash string) error {
	if !isUUID(id) {
		return fmt.Errorf("staff %q: %w", id, database.ErrNotFound)
	}
	res, err := r.pool.Exec(ctx, "UPDATE staff SET pin_hash = $2, updated_at = NOW() WHERE id = $1", id, pinHash)
	if err != nil {
		return fmt.Errorf("set pin hash: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("staff %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// DeactivateStaff marks a staff member inactive and deletes the enrollment in one transaction
func (r *StaffRepository) DeactivateStaff(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("staff %q: %w", id, database.ErrNotFound)
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "UPDATE staff SET is_active = FALSE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deactivate staff: %w", classifyError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("staff %s: %w", id, database.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM face_enrollments WHERE staff_id = $1", id); err != nil {
		return fmt.Errorf("delete enrollment: %w", classifyError(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit deactivation: %w", classifyError(err))
	}
	return nil
}
