package attendance

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/kozaktomas/staff-clock/internal/database"
)

// EnrollmentInfo is the public view of an enrollment. It never carries the vector.
type EnrollmentInfo struct {
	StaffID    string    `json:"staff_id"`
	Model      string    `json:"model"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// IndexStatus describes the enrollment cache after a rebuild.
type IndexStatus struct {
	Enrollments int  `json:"enrollments"`
	HNSWActive  bool `json:"hnsw_active"`
}

// Enroll stores the reference embedding of a staff member, replacing any previous one.
func (s *Service) Enroll(ctx context.Context, staffID string, embedding []float32, model string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.enroll(ctx, staffID, embedding, model)
}

// EnrollFromImage extracts the embedding from a photo and enrolls it.
func (s *Service) EnrollFromImage(ctx context.Context, staffID string, image []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.embedder == nil {
		return fmt.Errorf("enrolling %s: no embedding service configured", staffID)
	}
	if len(image) == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	embedding, model, err := s.embedder.EmbedFace(ctx, image)
	if err != nil {
		return classify(ctx, "extracting face embedding", err)
	}
	return s.enroll(ctx, staffID, embedding, model)
}

func (s *Service) enroll(ctx context.Context, staffID string, embedding []float32, model string) error {
	if len(embedding) != s.dim {
		return fmt.Errorf("%w: got %d values, expected %d", ErrInvalidEmbeddingLength, len(embedding), s.dim)
	}
	for _, v := range embedding {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: embedding contains NaN or Inf", ErrInvalidInput)
		}
	}
	if err := s.requireActiveStaff(ctx, staffID); err != nil {
		return err
	}
	if model == "" {
		model = database.DefaultEmbeddingModel
	}

	details := map[string]any{"model": model}
	if ids := s.lookAlikes(ctx, staffID, embedding); len(ids) > 0 {
		log.Printf("Warning: enrollment of %s is within the match threshold of %v; clock-ins may come out ambiguous", staffID, ids)
		details["look_alikes"] = ids
	}

	if err := s.stores.Enrollments.UpsertEnrollment(ctx, staffID, embedding, model); err != nil {
		return classify(ctx, "storing enrollment", err)
	}
	s.cache.Invalidate()
	s.audit(ctx, database.AuditEnroll, staffID, details)
	return nil
}

// lookAlikes lists other staff whose enrollment the new embedding would also match.
// It only feeds warnings, so lookup failures are logged and ignored.
func (s *Service) lookAlikes(ctx context.Context, staffID string, embedding []float32) []string {
	near, err := s.cache.LookAlikes(ctx, embedding, staffID, s.matcher.Threshold)
	if err != nil {
		log.Printf("Warning: look-alike check for %s failed: %v", staffID, err)
		return nil
	}
	ids := make([]string, len(near))
	for i, n := range near {
		ids[i] = n.StaffID
	}
	return ids
}

// Unenroll removes a staff member's face enrollment.
func (s *Service) Unenroll(ctx context.Context, staffID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.stores.Enrollments.DeleteEnrollment(ctx, staffID); err != nil {
		return classify(ctx, "deleting enrollment", err)
	}
	s.cache.Invalidate()
	s.audit(ctx, database.AuditUnenroll, staffID, nil)
	return nil
}

// ListEnrollments returns enrollment metadata sorted by staff id.
func (s *Service) ListEnrollments(ctx context.Context) ([]EnrollmentInfo, error) {
	list, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, classify(ctx, "listing enrollments", err)
	}
	out := make([]EnrollmentInfo, len(list))
	for i, e := range list {
		out[i] = EnrollmentInfo{StaffID: e.StaffID, Model: e.Model, EnrolledAt: e.EnrolledAt}
	}
	return out, nil
}

// RebuildIndex reloads enrollments from the store and rebuilds the HNSW look-alike index.
func (s *Service) RebuildIndex(ctx context.Context) (IndexStatus, error) {
	n, err := s.cache.Rebuild(ctx)
	if err != nil {
		return IndexStatus{}, classify(ctx, "rebuilding index", err)
	}
	return IndexStatus{Enrollments: n, HNSWActive: s.cache.IndexActive()}, nil
}

func (s *Service) requireActiveStaff(ctx context.Context, staffID string) error {
	if staffID == "" {
		return fmt.Errorf("%w: staff id is required", ErrInvalidInput)
	}
	if s.stores.Staff == nil {
		return nil
	}
	member, err := s.stores.Staff.GetStaff(ctx, staffID)
	if err != nil {
		return classify(ctx, "looking up staff", err)
	}
	if member == nil || !member.IsActive {
		return fmt.Errorf("%w: %s", ErrUnknownStaff, staffID)
	}
	return nil
}
