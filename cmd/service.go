package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/kozaktomas/staff-clock/internal/config"
	"github.com/kozaktomas/staff-clock/internal/database/mariadb"
	"github.com/kozaktomas/staff-clock/internal/database/postgres"
	"github.com/kozaktomas/staff-clock/internal/embedder"
	"github.com/kozaktomas/staff-clock/internal/facematch"
)

// backend bundles the connections a command needs.
type backend struct {
	cfg         *config.Config
	pool        *postgres.Pool
	enrollments *postgres.EnrollmentRepository
	audit       *postgres.AuditRepository
	embedder    *embedder.Client
	service     *attendance.Service
}

// openBackend connects to PostgreSQL, applies migrations and builds the attendance service.
func openBackend(ctx context.Context) (*backend, error) {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	policy, err := attendance.NewPolicy(cfg.Attendance.WorkStartTime, cfg.Attendance.LateGraceMinutes, cfg.Attendance.Timezone)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("invalid attendance configuration: %w", err)
	}

	b := &backend{
		cfg:         cfg,
		pool:        pool,
		enrollments: postgres.NewEnrollmentRepository(pool),
		audit:       postgres.NewAuditRepository(pool),
	}

	opts := attendance.Options{
		Matcher:            facematch.NewMatcher(cfg.Match.Threshold, cfg.Match.ScoreScale, cfg.Match.TieEpsilon),
		Policy:             policy,
		EmbeddingDim:       cfg.Match.EmbeddingDim,
		ClockTimeout:       cfg.Attendance.ClockTimeout,
		HNSWMinEnrollments: cfg.Database.HNSWMinEnrollments,
	}
	if cfg.Embedding.URL != "" {
		b.embedder = embedder.NewClient(cfg.Embedding.URL, cfg.Embedding.MaxImageSize)
		opts.Embedder = b.embedder
	}

	b.service = attendance.NewService(attendance.Stores{
		Enrollments: b.enrollments,
		Attendance:  postgres.NewAttendanceRepository(pool),
		Staff:       postgres.NewStaffRepository(pool),
		Audit:       b.audit,
		Settings:    postgres.NewSettingsRepository(pool),
	}, opts)
	return b, nil
}

// Close waits for pending audit writes and closes the database.
func (b *backend) Close() {
	b.service.WaitForAudits()
	b.pool.Close()
}

// openRoster connects to the school management system, nil when it is not configured.
func openRoster(cfg *config.Config) (*mariadb.Pool, error) {
	if cfg.Roster.DatabaseURL == "" {
		return nil, nil
	}
	return mariadb.NewPool(cfg.Roster.DatabaseURL)
}

// readEmbeddingFile loads a JSON array of floats.
func readEmbeddingFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading embedding file: %w", err)
	}
	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, fmt.Errorf("parsing embedding file %s: %w", path, err)
	}
	return embedding, nil
}
