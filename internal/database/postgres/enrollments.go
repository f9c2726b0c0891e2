package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/staff-clock/internal/database"
)

// EnrollmentRepository stores face enrollments in a pgvector column.
type EnrollmentRepository struct {
	pool *Pool
}

// NewEnrollmentRepository creates a new PostgreSQL enrollment repository
func NewEnrollmentRepository(pool *Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// ListEnrollments returns the enrollments of all active staff members
func (r *EnrollmentRepository) ListEnrollments(ctx context.Context) ([]database.StoredEnrollment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.staff_id, e.embedding, e.model, e.enrolled_at
		FROM face_enrollments e
		JOIN staff s ON s.id = e.staff_id
		WHERE s.is_active
		ORDER BY e.staff_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	var out []database.StoredEnrollment
	for rows.Next() {
		var enr database.StoredEnrollment
		var vec pgvector.Vector
		if err := rows.Scan(&enr.StaffID, &vec, &enr.Model, &enr.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enr.Embedding = vec.Slice()
		out = append(out, enr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", classifyError(err))
	}
	return out, nil
}

// GetEnrollment returns the enrollment of one staff member, nil if not enrolled
func (r *EnrollmentRepository) GetEnrollment(ctx context.Context, staffID string) (*database.StoredEnrollment, error) {
	if !isUUID(staffID) {
		return nil, nil
	}

	var enr database.StoredEnrollment
	var vec pgvector.Vector
	err := r.pool.QueryRow(ctx, `
		SELECT staff_id, embedding, model, enrolled_at
		FROM face_enrollments
		WHERE staff_id = $1
	`, staffID).Scan(&enr.StaffID, &vec, &enr.Model, &enr.EnrolledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query enrollment: %w", classifyError(err))
	}
	enr.Embedding = vec.Slice()
	return &enr, nil
}

// CountEnrollments returns the number of enrolled staff members
func (r *EnrollmentRepository) CountEnrollments(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM face_enrollments").Scan(&count); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", classifyError(err))
	}
	return count, nil
}

// UpsertEnrollment stores the embedding, replacing any previous enrollment.
// Returns ErrNotFound when the staff member does not exist.
func (r *EnrollmentRepository) UpsertEnrollment(ctx context.Context, staffID string, embedding []float32, model string) error {
	if !isUUID(staffID) {
		return fmt.Errorf("staff %q: %w", staffID, database.ErrNotFound)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO face_enrollments (staff_id, embedding, model, enrolled_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (staff_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			model = EXCLUDED.model,
			enrolled_at = EXCLUDED.enrolled_at
	`, staffID, pgvector.NewVector(embedding), model)
	if err != nil {
		return fmt.Errorf("upsert enrollment: %w", err)
	}
	return nil
}

// DeleteEnrollment removes the enrollment of a staff member
func (r *EnrollmentRepository) DeleteEnrollment(ctx context.Context, staffID string) error {
	if !isUUID(staffID) {
		return nil
	}
	if _, err := r.pool.Exec(ctx, "DELETE FROM face_enrollments WHERE staff_id = $1", staffID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// NearestEnrollments returns the closest enrollments by L2 distance computed in PostgreSQL.
// Used to cross-check the in-process matcher from the CLI.
func (r *EnrollmentRepository) NearestEnrollments(ctx context.Context, embedding []float32, limit int) ([]database.StoredEnrollment, []float64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.staff_id, e.embedding, e.model, e.enrolled_at, e.embedding <-> $1 AS distance
		FROM face_enrollments e
		JOIN staff s ON s.id = e.staff_id
		WHERE s.is_active
		ORDER BY distance, e.staff_id
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query nearest enrollments: %w", err)
	}
	defer rows.Close()

	var out []database.StoredEnrollment
	var distances []float64
	for rows.Next() {
		var enr database.StoredEnrollment
		var vec pgvector.Vector
		var d float64
		if err := rows.Scan(&enr.StaffID, &vec, &enr.Model, &enr.EnrolledAt, &d); err != nil {
			return nil, nil, fmt.Errorf("scan nearest enrollment: %w", err)
		}
		enr.Embedding = vec.Slice()
		out = append(out, enr)
		distances = append(distances, d)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate nearest enrollments: %w", classifyError(err))
	}
	return out, distances, nil
}
