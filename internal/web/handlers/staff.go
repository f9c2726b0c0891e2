package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/kozaktomas/staff-clock/internal/database"
)

// StaffHandler handles staff roster endpoints
type StaffHandler struct {
	service *attendance.Service
	roster  database.RosterSource
}

// NewStaffHandler creates a new staff handler. roster may be nil when no
// school management system is configured.
func NewStaffHandler(service *attendance.Service, roster database.RosterSource) *StaffHandler {
	return &StaffHandler{service: service, roster: roster}
}

// StaffResponse is the public view of a staff member. The PIN hash is never returned.
type StaffResponse struct {
	ID          string    `json:"id"`
	StaffNumber string    `json:"staff_number"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email,omitempty"`
	Department  string    `json:"department,omitempty"`
	Position    string    `json:"position,omitempty"`
	IsActive    bool      `json:"is_active"`
	HasPin      bool      `json:"has_pin"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func staffResponse(m database.StaffMember) StaffResponse {
	return StaffResponse{
		ID:          m.ID,
		StaffNumber: m.StaffNumber,
		FullName:    m.FullName,
		Email:       m.Email,
		Department:  m.Department,
		Position:    m.Position,
		IsActive:    m.IsActive,
		HasPin:      m.PinHash != "",
		UpdatedAt:   m.UpdatedAt,
	}
}

// SetPinRequest is the body of PUT /staff/{id}/pin
type SetPinRequest struct {
	Pin string `json:"pin" validate:"required,numeric,min=4,max=8"`
}

// List handles GET /staff?q=...&active=true
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if v := r.URL.Query().Get("active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid active parameter")
			return
		}
		activeOnly = parsed
	}

	members, err := h.service.ListStaff(r.Context(), r.URL.Query().Get("q"), activeOnly)
	if err != nil {
		respondServiceError(w, "list staff", err)
		return
	}
	out := make([]StaffResponse, 0, len(members))
	for _, m := range members {
		out = append(out, staffResponse(m))
	}
	respondJSON(w, http.StatusOK, out)
}

// Get handles GET /staff/{id}
func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.GetStaff(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, "get staff", err)
		return
	}
	respondJSON(w, http.StatusOK, staffResponse(*member))
}

// SetPin handles PUT /staff/{id}/pin
func (h *StaffHandler) SetPin(w http.ResponseWriter, r *http.Request) {
	var req SetPinRequest
	if msg, ok := decodeJSON(w, r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if err := h.service.SetPin(r.Context(), chi.URLParam(r, "id"), req.Pin); err != nil {
		respondServiceError(w, "set pin", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Deactivate handles POST /staff/{id}/deactivate
func (h *StaffHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeactivateStaff(r.Context(), id); err != nil {
		respondServiceError(w, "deactivate staff", err)
		return
	}
	log.Printf("Deactivated staff %s", sanitizeForLog(id))
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// Sync handles POST /staff/sync
func (h *StaffHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.roster == nil {
		respondError(w, http.StatusServiceUnavailable, "roster source not configured")
		return
	}
	synced, err := h.service.SyncRoster(r.Context(), h.roster, nil)
	if err != nil {
		respondServiceError(w, "sync roster", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"synced": synced})
}
