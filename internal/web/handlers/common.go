package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/kozaktomas/staff-clock/internal/constants"
	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/devicelog"
	"github.com/kozaktomas/staff-clock/internal/embedder"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps domain errors to HTTP status codes.
// Timeout is checked first because a timed-out store call may also look unavailable.
func statusForError(err error) int {
	switch {
	case errors.Is(err, attendance.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, attendance.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, embedder.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, attendance.ErrNoMatch),
		errors.Is(err, attendance.ErrUnknownStaff),
		errors.Is(err, database.ErrNotFound),
		errors.Is(err, attendance.ErrNoEnrollments):
		return http.StatusNotFound
	case errors.Is(err, attendance.ErrAmbiguousMatch),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrOutOfOrder),
		errors.Is(err, attendance.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, attendance.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, attendance.ErrNoCheckInFound),
		errors.Is(err, attendance.ErrInvalidInput),
		errors.Is(err, attendance.ErrInvalidEmbeddingLength),
		errors.Is(err, attendance.ErrInvalidClockType),
		errors.Is(err, devicelog.ErrUnsupportedFormat):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondServiceError logs unexpected failures and sends the mapped status.
func respondServiceError(w http.ResponseWriter, op string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s failed: %v", op, err)
	}
	respondError(w, status, err.Error())
}

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and the state of the database.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a health handler. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles the health check endpoint.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.HealthCheckTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		log.Printf("Health check: database ping failed: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "unavailable",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "ok",
	})
}
