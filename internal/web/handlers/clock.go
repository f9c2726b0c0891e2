package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/kozaktomas/staff-clock/internal/constants"
	"github.com/kozaktomas/staff-clock/internal/facematch"
	"github.com/kozaktomas/staff-clock/internal/web/middleware"
)

// fallbackPin tells the kiosk to offer PIN entry instead of retrying the camera.
const fallbackPin = "pin"

// ClockHandler handles clock-in and clock-out endpoints
type ClockHandler struct {
	service *attendance.Service
}

// NewClockHandler creates a new clock handler
func NewClockHandler(service *attendance.Service) *ClockHandler {
	return &ClockHandler{service: service}
}

// ClockFaceRequest carries a probe embedding computed on the kiosk
type ClockFaceRequest struct {
	Embedding []float32 `json:"embedding" validate:"required,min=1"`
	ClockType string    `json:"clock_type" validate:"required"`
	DeviceID  string    `json:"device_id" validate:"max=64"`
}

// ClockPinRequest is the PIN fallback
type ClockPinRequest struct {
	StaffNumber string `json:"staff_number" validate:"required,max=64"`
	Pin         string `json:"pin" validate:"required,numeric,min=4,max=8"`
	ClockType   string `json:"clock_type" validate:"required"`
}

// ClockResponse is returned for an accepted clock event
type ClockResponse struct {
	StaffID     string                 `json:"staff_id"`
	StaffName   string                 `json:"staff_name,omitempty"`
	ClockType   attendance.ClockType   `json:"clock_type"`
	Timestamp   time.Time              `json:"timestamp"`
	Date        string                 `json:"date"`
	IsLate      bool                   `json:"is_late"`
	CheckInTime time.Time              `json:"check_in_time"`
	Method      string                 `json:"method"`
	Match       *facematch.MatchResult `json:"match,omitempty"`
}

// ClockRejection is returned when the face could not be attributed to one staff member
type ClockRejection struct {
	Error    string                 `json:"error"`
	Decision facematch.Decision     `json:"decision,omitempty"`
	Fallback string                 `json:"fallback,omitempty"`
	Match    *facematch.MatchResult `json:"match,omitempty"`
}

// ClockFace handles POST /clock with a precomputed embedding
func (h *ClockHandler) ClockFace(w http.ResponseWriter, r *http.Request) {
	var req ClockFaceRequest
	if msg, ok := decodeJSON(w, r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	ct, err := attendance.ParseClockType(req.ClockType)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = middleware.DeviceIDFromContext(r.Context())
	}

	result, err := h.service.ClockFace(r.Context(), req.Embedding, ct, deviceID)
	h.respond(w, result, err)
}

// ClockFaceImage handles POST /clock/image with a camera frame as multipart "file"
func (h *ClockHandler) ClockFaceImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	ct, err := attendance.ParseClockType(r.FormValue("clock_type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
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

	deviceID := r.FormValue("device_id")
	if deviceID == "" {
		deviceID = middleware.DeviceIDFromContext(r.Context())
	}

	result, err := h.service.ClockFaceImage(r.Context(), image, ct, deviceID)
	h.respond(w, result, err)
}

// ClockPin handles POST /clock/pin
func (h *ClockHandler) ClockPin(w http.ResponseWriter, r *http.Request) {
	var req ClockPinRequest
	if msg, ok := decodeJSON(w, r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	ct, err := attendance.ParseClockType(req.ClockType)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ClockPin(r.Context(), req.StaffNumber, req.Pin, ct)
	if errors.Is(err, attendance.ErrInvalidCredentials) {
		log.Printf("PIN clock rejected for staff number %s", sanitizeForLog(req.StaffNumber))
	}
	h.respond(w, result, err)
}

func (h *ClockHandler) respond(w http.ResponseWriter, result *attendance.ClockResult, err error) {
	if err != nil {
		if errors.Is(err, attendance.ErrNoMatch) || errors.Is(err, attendance.ErrAmbiguousMatch) {
			rejection := ClockRejection{Error: err.Error(), Fallback: fallbackPin}
			if result != nil && result.Match != nil {
				rejection.Decision = result.Match.Decision
				rejection.Match = result.Match
			}
			respondJSON(w, statusForError(err), rejection)
			return
		}
		respondServiceError(w, "clock", err)
		return
	}

	day := result.Day
	resp := ClockResponse{
		StaffID:     result.StaffID,
		StaffName:   result.StaffName,
		ClockType:   result.ClockType,
		Timestamp:   day.CheckInTime,
		Date:        day.Date.Format("2006-01-02"),
		IsLate:      day.IsLate,
		CheckInTime: day.CheckInTime,
		Method:      string(day.Method),
		Match:       result.Match,
	}
	if result.ClockType == attendance.ClockOut && day.CheckOutTime != nil {
		resp.Timestamp = *day.CheckOutTime
	}
	respondJSON(w, http.StatusOK, resp)
}
