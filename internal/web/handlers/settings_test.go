package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSettingsHandler_GetDefaults(t *testing.T) {
	env := newTestEnv(t)
	recorder := httptest.NewRecorder()

	NewSettingsHandler(env.service).Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var resp SettingsResponse
	parseJSONResponse(t, recorder, &resp)
	want := SettingsResponse{WorkStartTime: "08:00", LateThresholdMinutes: 15, Timezone: "Africa/Lagos"}
	if resp != want {
		t.Errorf("expected %+v, got %+v", want, resp)
	}
}

func TestSettingsHandler_Update(t *testing.T) {
	zero := 0
	ten := 10

	tests := []struct {
		name       string
		body       SettingsRequest
		wantStatus int
	}{
		{"valid", SettingsRequest{WorkStartTime: "07:30", LateThresholdMinutes: &ten, Timezone: "Africa/Accra"}, http.StatusOK},
		{"zero grace", SettingsRequest{WorkStartTime: "07:30", LateThresholdMinutes: &zero, Timezone: "UTC"}, http.StatusOK},
		{"bad time", SettingsRequest{WorkStartTime: "7.30am", LateThresholdMinutes: &ten, Timezone: "UTC"}, http.StatusBadRequest},
		{"bad zone", SettingsRequest{WorkStartTime: "07:30", LateThresholdMinutes: &ten, Timezone: "Mars/Olympus"}, http.StatusBadRequest},
		{"missing grace", SettingsRequest{WorkStartTime: "07:30", Timezone: "UTC"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := NewSettingsHandler(env.service)

			recorder := httptest.NewRecorder()
			h.Update(recorder, jsonRequest(t, http.MethodPut, "/api/v1/settings", tt.body))
			assertStatusCode(t, recorder, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}

			recorder = httptest.NewRecorder()
			h.Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
			var resp SettingsResponse
			parseJSONResponse(t, recorder, &resp)
			if resp.WorkStartTime != tt.body.WorkStartTime || resp.LateThresholdMinutes != *tt.body.LateThresholdMinutes || resp.Timezone != tt.body.Timezone {
				t.Errorf("expected stored %+v, got %+v", tt.body, resp)
			}
		})
	}
}
