package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/database/mock"
	"github.com/kozaktomas/staff-clock/internal/facematch"
	"github.com/kozaktomas/staff-clock/internal/pin"
)

const (
	staffA  = "6a1e1b0c-8f0d-4f7e-9d2b-3c4f5a6b7c01"
	staffB  = "6a1e1b0c-8f0d-4f7e-9d2b-3c4f5a6b7c02"
	testDim = 3
)

// testEnv is an attendance service over in-memory stores with a fixed clock.
type testEnv struct {
	service     *attendance.Service
	enrollments *mock.MockEnrollmentStore
	attendance  *mock.MockAttendanceStore
	staff       *mock.MockStaffStore
	settings    *mock.MockSettingsStore
	now         time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	policy, err := attendance.NewPolicy("08:00", 15, "Africa/Lagos")
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}

	env := &testEnv{
		enrollments: mock.NewMockEnrollmentStore(),
		attendance:  mock.NewMockAttendanceStore(),
		settings:    mock.NewMockSettingsStore(),
		now:         time.Date(2026, 3, 2, 7, 50, 0, 0, policy.Location),
	}
	env.staff = mock.NewMockStaffStore(env.enrollments)

	hash, err := pin.Hash("4821")
	if err != nil {
		t.Fatalf("pin.Hash failed: %v", err)
	}
	env.staff.AddStaff(database.StaffMember{ID: staffA, StaffNumber: "T001", FullName: "Ngozi Okafor", PinHash: hash, IsActive: true})
	env.staff.AddStaff(database.StaffMember{ID: staffB, StaffNumber: "T002", FullName: "Tunde Bello", IsActive: true})
	env.enrollments.AddEnrollment(staffA, []float32{1, 0, 0})
	env.enrollments.AddEnrollment(staffB, []float32{0, 1, 0})

	env.service = attendance.NewService(attendance.Stores{
		Enrollments: env.enrollments,
		Attendance:  env.attendance,
		Staff:       env.staff,
		Audit:       mock.NewMockAuditLog(),
		Settings:    env.settings,
	}, attendance.Options{
		Matcher:      facematch.NewMatcher(0.6, 0.6, 1e-6),
		Policy:       policy,
		EmbeddingDim: testDim,
		ClockTimeout: 2 * time.Second,
		Now:          func() time.Time { return env.now },
	})
	t.Cleanup(env.service.WaitForAudits)
	return env
}

// jsonRequest creates a request with a JSON body
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest creates a request with one file part and extra form fields
func multipartRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
