package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/staff-clock/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.db)
	configHandler := handlers.NewConfigHandler(s.config)
	clockHandler := handlers.NewClockHandler(s.service)
	enrollHandler := handlers.NewEnrollHandler(s.service)
	attendanceHandler := handlers.NewAttendanceHandler(s.service)
	settingsHandler := handlers.NewSettingsHandler(s.service)
	staffHandler := handlers.NewStaffHandler(s.service, s.roster)

	s.router.Get("/api/v1/health", healthHandler.Check)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)

		// Clock events
		r.Post("/clock", clockHandler.ClockFace)
		r.Post("/clock/image", clockHandler.ClockFaceImage)
		r.Post("/clock/pin", clockHandler.ClockPin)

		// Enrollment
		r.Get("/enrollments", enrollHandler.List)
		r.Post("/enrollments/rebuild-index", enrollHandler.RebuildIndex)
		r.Put("/enrollments/{staffId}", enrollHandler.Enroll)
		r.Put("/enrollments/{staffId}/image", enrollHandler.EnrollImage)
		r.Delete("/enrollments/{staffId}", enrollHandler.Unenroll)

		// Attendance
		r.Get("/attendance/today", attendanceHandler.Today)
		r.Get("/attendance/stats", attendanceHandler.Stats)
		r.Post("/attendance/sync", attendanceHandler.Sync)
		r.Post("/attendance/import", attendanceHandler.Import)

		// Settings
		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Update)

		// Staff
		r.Get("/staff", staffHandler.List)
		r.Post("/staff/sync", staffHandler.Sync)
		r.Get("/staff/{id}", staffHandler.Get)
		r.Put("/staff/{id}/pin", staffHandler.SetPin)
		r.Post("/staff/{id}/deactivate", staffHandler.Deactivate)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})
}
