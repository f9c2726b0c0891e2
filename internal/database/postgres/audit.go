package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/staff-clock/internal/constants"
	"github.com/kozaktomas/staff-clock/internal/database"
)

// AuditRepository appends to the audit_logs table.
type AuditRepository struct {
	pool *Pool
}

// NewAuditRepository creates a new PostgreSQL audit repository
func NewAuditRepository(pool *Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// AppendAudit writes one audit entry. ID and CreatedAt are filled in when empty.
func (r *AuditRepository) AppendAudit(ctx context.Context, entry database.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, action, staff_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.Action, nullableUUID(entry.StaffID), string(raw), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the most recent entries, newest first
func (r *AuditRepository) ListAudit(ctx context.Context, limit int) ([]database.AuditEntry, error) {
	if limit <= 0 {
		limit = constants.DefaultAuditLimit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, action, COALESCE(staff_id::text, ''), details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []database.AuditEntry
	for rows.Next() {
		var e database.AuditEntry
		var raw []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.StaffID, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if err := json.Unmarshal(raw, &e.Details); err != nil {
			return nil, fmt.Errorf("unmarshal audit details: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", classifyError(err))
	}
	return out, nil
}
