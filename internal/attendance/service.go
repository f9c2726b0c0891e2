// Package attendance records staff clock events: it matches faces or PINs to a
// staff member and moves their attendance day through NotStarted, CheckedIn and CheckedOut.
package attendance

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/staff-clock/internal/constants"
	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/facematch"
)

const defaultClockTimeout = 5 * time.Second

// Embedder turns a camera frame into a face embedding.
type Embedder interface {
	EmbedFace(ctx context.Context, image []byte) ([]float32, string, error)
}

// Stores are the persistence handles the service works on.
// Audit and Settings are optional.
type Stores struct {
	Enrollments database.EnrollmentWriter
	Attendance  database.AttendanceWriter
	Staff       database.StaffWriter
	Audit       database.AuditWriter
	Settings    database.SettingsStore
}

type Options struct {
	Matcher            *facematch.Matcher
	Policy             Policy // used when no settings are stored
	EmbeddingDim       int
	ClockTimeout       time.Duration
	HNSWMinEnrollments int
	Embedder           Embedder
	Now                func() time.Time
}

// Service is safe for concurrent use. Operations for different staff members
// share nothing but the enrollment cache.
type Service struct {
	stores   Stores
	matcher  *facematch.Matcher
	policy   Policy
	dim      int
	timeout  time.Duration
	embedder Embedder
	now      func() time.Time
	cache    *database.EnrollmentCache

	audits sync.WaitGroup
}

func NewService(stores Stores, opts Options) *Service {
	s := &Service{
		stores:   stores,
		matcher:  opts.Matcher,
		policy:   opts.Policy,
		dim:      opts.EmbeddingDim,
		timeout:  opts.ClockTimeout,
		embedder: opts.Embedder,
		now:      opts.Now,
		cache:    database.NewEnrollmentCache(stores.Enrollments, opts.HNSWMinEnrollments),
	}
	if s.matcher == nil {
		s.matcher = facematch.NewMatcher(0, 0, 0)
	}
	if s.dim <= 0 {
		s.dim = database.FaceEmbeddingDim
	}
	if s.timeout <= 0 {
		s.timeout = defaultClockTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.policy.Location == nil {
		s.policy.Location = time.UTC
	}
	return s
}

// Matcher returns the matcher configuration in use.
func (s *Service) Matcher() *facematch.Matcher {
	return s.matcher
}

// EmbeddingDim returns the expected embedding length.
func (s *Service) EmbeddingDim() int {
	return s.dim
}

// WaitForAudits blocks until pending audit writes have finished.
func (s *Service) WaitForAudits() {
	s.audits.Wait()
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// audit appends an audit entry in the background. Failures are logged and
// never affect the operation being audited.
func (s *Service) audit(ctx context.Context, action, staffID string, details map[string]any) {
	if s.stores.Audit == nil {
		return
	}
	entry := database.AuditEntry{
		ID:        uuid.New().String(),
		Action:    action,
		StaffID:   staffID,
		Details:   details,
		CreatedAt: s.now(),
	}
	s.audits.Add(1)
	go func() {
		defer s.audits.Done()
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.AuditWriteTimeout)
		defer cancel()
		if err := s.stores.Audit.AppendAudit(actx, entry); err != nil {
			log.Printf("Warning: failed to write audit entry %s for %s: %v", action, staffID, err)
		}
	}()
}
