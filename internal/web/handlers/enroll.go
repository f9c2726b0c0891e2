package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/kozaktomas/staff-clock/internal/constants"
	"github.com/kozaktomas/staff-clock/internal/database"
)

// EnrollHandler handles face enrollment endpoints
type EnrollHandler struct {
	service *attendance.Service
}

// NewEnrollHandler creates a new enrollment handler
func NewEnrollHandler(service *attendance.Service) *EnrollHandler {
	return &EnrollHandler{service: service}
}

// EnrollRequest carries a reference embedding computed on the enrollment station
type EnrollRequest struct {
	Embedding []float32 `json:"embedding" validate:"required,min=1"`
	Model     string    `json:"model" validate:"max=64"`
}

// Enroll handles PUT /enrollments/{staffId}
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "staffId")

	var req EnrollRequest
	if msg, ok := decodeJSON(w, r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	model := req.Model
	if model == "" {
		model = database.DefaultEmbeddingModel
	}

	if err := h.service.Enroll(r.Context(), staffID, req.Embedding, model); err != nil {
		respondServiceError(w, "enroll", err)
		return
	}
	log.Printf("Enrolled face for staff %s", sanitizeForLog(staffID))
	respondJSON(w, http.StatusOK, map[string]string{"status": "enrolled", "staff_id": staffID})
}

// EnrollImage handles PUT /enrollments/{staffId}/image with a photo as multipart "file"
func (h *EnrollHandler) EnrollImage(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "staffId")

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	if err := h.service.EnrollFromImage(r.Context(), staffID, image); err != nil {
		respondServiceError(w, "enroll from image", err)
		return
	}
	log.Printf("Enrolled face from image for staff %s", sanitizeForLog(staffID))
	respondJSON(w, http.StatusOK, map[string]string{"status": "enrolled", "staff_id": staffID})
}

// Unenroll handles DELETE /enrollments/{staffId}
func (h *EnrollHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "staffId")
	if err := h.service.Unenroll(r.Context(), staffID); err != nil {
		respondServiceError(w, "unenroll", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "unenrolled", "staff_id": staffID})
}

// List handles GET /enrollments. Vectors are never returned.
func (h *EnrollHandler) List(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.service.ListEnrollments(r.Context())
	if err != nil {
		respondServiceError(w, "list enrollments", err)
		return
	}
	if enrollments == nil {
		enrollments = []attendance.EnrollmentInfo{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"enrollments": enrollments,
		"count":       len(enrollments),
	})
}

// RebuildIndex handles POST /enrollments/rebuild-index
func (h *EnrollHandler) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.RebuildIndex(r.Context())
	if err != nil {
		respondServiceError(w, "rebuild index", err)
		return
	}
	log.Printf("Enrollment index rebuilt: %d enrollments, hnsw=%v", status.Enrollments, status.HNSWActive)
	respondJSON(w, http.StatusOK, status)
}
