package handlers

import (
	"net/http"
	"time"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/kozaktomas/staff-clock/internal/constants"
	"github.com/kozaktomas/staff-clock/internal/devicelog"
	"github.com/kozaktomas/staff-clock/internal/web/middleware"
)


// AttendanceHandler handles reporting and device sync endpoints
type AttendanceHandler struct {
	service *attendance.Service
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(service *attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// SyncRequest is a batch of offline records from a fingerprint terminal
type SyncRequest struct {
	DeviceID string                    `json:"device_id" validate:"max=64"`
	Records  []attendance.DeviceRecord `json:"records" validate:"required,min=1,max=5000,dive"`
}

// Today handles GET /attendance/today
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Today(r.Context())
	if err != nil {
		respondServiceError(w, "today report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Stats handles GET /attendance/stats?month=YYYY-MM&staff_id=...
func (h *AttendanceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.service.Stats(r.Context(), q.Get("month"), q.Get("staff_id"))
	if err != nil {
		respondServiceError(w, "stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Sync handles POST /attendance/sync with JSON records
func (h *AttendanceHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if msg, ok := decodeJSON(w, r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = middleware.DeviceIDFromContext(r.Context())
	}

	result := h.service.SyncDevice(r.Context(), deviceID, req.Records, nil)
	respondJSON(w, http.StatusOK, result)
}

// Import handles POST /attendance/import with a CSV or XLSX device export as multipart "file".
// Unparseable rows are reported alongside the sync failures.
func (h *AttendanceHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	format, err := devicelog.FormatFromFilename(header.Filename)
	if err != nil {
		respondServiceError(w, "import", err)
		return
	}

	loc := h.service.CurrentPolicy(r.Context()).Location
	if loc == nil {
		loc = time.UTC
	}
	parsed, err := devicelog.Parse(file, format, loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(parsed.Records) > constants.MaxSyncRecords {
		respondError(w, http.StatusBadRequest, "too many records in device log")
		return
	}

	deviceID := r.FormValue("device_id")
	if deviceID == "" {
		deviceID = middleware.DeviceIDFromContext(r.Context())
	}

	result := h.service.SyncDevice(r.Context(), deviceID, parsed.Records, nil)
	result.Failed += len(parsed.Errors)
	result.Errors = append(result.Errors, parsed.Errors...)
	respondJSON(w, http.StatusOK, result)
}
