package handlers

import (
	"net/http"
	"time"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/kozaktomas/staff-clock/internal/database"
)

// SettingsHandler handles the attendance policy endpoints
type SettingsHandler struct {
	service *attendance.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service *attendance.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// SettingsRequest is the body of PUT /settings
type SettingsRequest struct {
	WorkStartTime        string `json:"work_start_time" validate:"required,datetime=15:04"`
	LateThresholdMinutes *int   `json:"late_threshold_minutes" validate:"required,min=0,max=720"`
	Timezone             string `json:"timezone" validate:"required,timezone"`
}

// SettingsResponse is the effective attendance policy
type SettingsResponse struct {
	WorkStartTime        string `json:"work_start_time"`
	LateThresholdMinutes int    `json:"late_threshold_minutes"`
	Timezone             string `json:"timezone"`
}

func settingsResponse(p attendance.Policy) SettingsResponse {
	s := p.Settings()
	return SettingsResponse{
		WorkStartTime:        s.WorkStartTime,
		LateThresholdMinutes: s.LateThresholdMinutes,
		Timezone:             s.Timezone,
	}
}

// Get handles GET /settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, settingsResponse(h.service.CurrentPolicy(r.Context())))
}

// Update handles PUT /settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if msg, ok := decodeJSON(w, r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	p, err := h.service.UpdateSettings(r.Context(), database.Settings{
		WorkStartTime:        req.WorkStartTime,
		LateThresholdMinutes: *req.LateThresholdMinutes,
		Timezone:             req.Timezone,
		UpdatedAt:            time.Now(),
	})
	if err != nil {
		respondServiceError(w, "update settings", err)
		return
	}
	respondJSON(w, http.StatusOK, settingsResponse(p))
}
