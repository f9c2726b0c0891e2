package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/kozaktomas/staff-clock/internal/config"
	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/web/handlers"
	"github.com/kozaktomas/staff-clock/internal/web/middleware"
)

// requestTimeout bounds every request. Clock events have their own tighter bound.
const requestTimeout = 60 * time.Second

// Server represents the web server
type Server struct {
	config     *config.Config
	service    *attendance.Service
	roster     database.RosterSource
	db         handlers.Pinger
	router     *chi.Mux
	httpServer *http.Server
}

// Deps are the collaborators the HTTP API is built on. Roster and DB may be nil.
type Deps struct {
	Service *attendance.Service
	Roster  database.RosterSource
	DB      handlers.Pinger
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, deps Deps, port int, host string) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:  cfg,
		service: deps.Service,
		roster:  deps.Roster,
		db:      deps.DB,
		router:  r,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(requestTimeout))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.DeviceID())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and waits for pending audit writes
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if s.service != nil {
		s.service.WaitForAudits()
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
