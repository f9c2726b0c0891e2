package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/database/mock"
)

func TestStaffHandler_List(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{"all active", "", 2},
		{"name search ignores accents", "?q=tund%C3%A9", 1},
		{"staff number", "?q=T001", 1},
		{"no match", "?q=zzz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			recorder := httptest.NewRecorder()
			NewStaffHandler(env.service, nil).List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/staff"+tt.query, nil))

			assertStatusCode(t, recorder, http.StatusOK)
			var out []StaffResponse
			parseJSONResponse(t, recorder, &out)
			if len(out) != tt.wantCount {
				t.Errorf("expected %d staff, got %d", tt.wantCount, len(out))
			}
		})
	}
}

func TestStaffHandler_GetHidesPinHash(t *testing.T) {
	env := newTestEnv(t)
	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/staff/"+staffA, nil), map[string]string{"id": staffA})
	recorder := httptest.NewRecorder()

	NewStaffHandler(env.service, nil).Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var raw map[string]any
	parseJSONResponse(t, recorder, &raw)
	if _, leaked := raw["pin_hash"]; leaked {
		t.Error("staff response leaked the PIN hash")
	}
	if raw["has_pin"] != true {
		t.Errorf("expected has_pin true, got %v", raw["has_pin"])
	}
}

func TestStaffHandler_SetPinAndDeactivate(t *testing.T) {
	env := newTestEnv(t)
	h := NewStaffHandler(env.service, nil)

	req := jsonRequest(t, http.MethodPut, "/api/v1/staff/"+staffB+"/pin", SetPinRequest{Pin: "9034"})
	recorder := httptest.NewRecorder()
	h.SetPin(recorder, requestWithChiParams(req, map[string]string{"id": staffB}))
	assertStatusCode(t, recorder, http.StatusOK)

	recorder = httptest.NewRecorder()
	NewClockHandler(env.service).ClockPin(recorder, jsonRequest(t, http.MethodPost, "/api/v1/clock/pin", ClockPinRequest{
		StaffNumber: "T002", Pin: "9034", ClockType: "check_in",
	}))
	assertStatusCode(t, recorder, http.StatusOK)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/staff/"+staffB+"/deactivate", nil)
	recorder = httptest.NewRecorder()
	h.Deactivate(recorder, requestWithChiParams(req, map[string]string{"id": staffB}))
	assertStatusCode(t, recorder, http.StatusOK)

	enr, err := env.enrollments.GetEnrollment(context.Background(), staffB)
	if err != nil || enr != nil {
		t.Errorf("expected enrollment removed on deactivation, got %v, %v", enr, err)
	}
}

func TestStaffHandler_Sync(t *testing.T) {
	env := newTestEnv(t)

	recorder := httptest.NewRecorder()
	NewStaffHandler(env.service, nil).Sync(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/staff/sync", nil))
	assertStatusCode(t, recorder, http.StatusServiceUnavailable)

	roster := &mock.MockRoster{Staff: []database.StaffMember{
		{StaffNumber: "T003", FullName: "Chiamaka Eze", IsActive: true},
		{StaffNumber: "T002", FullName: "Tunde Bello", IsActive: false},
	}}
	recorder = httptest.NewRecorder()
	NewStaffHandler(env.service, roster).Sync(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/staff/sync", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	var resp map[string]int
	parseJSONResponse(t, recorder, &resp)
	if resp["synced"] != 2 {
		t.Errorf("expected 2 synced, got %d", resp["synced"])
	}

	roster.ListError = errors.Join(database.ErrStoreUnavailable, errors.New("connection refused"))
	recorder = httptest.NewRecorder()
	NewStaffHandler(env.service, roster).Sync(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/staff/sync", nil))
	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
}
