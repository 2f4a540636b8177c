package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/codepair/codepair/internal/config"
	"github.com/codepair/codepair/internal/executor"
	"github.com/codepair/codepair/internal/session"
)

// Server is the HTTP and websocket front of the collaboration service.
type Server struct {
	cfg     *config.Config
	hub     *session.Hub
	sandbox *executor.Sandbox
	router  chi.Router
	http    *http.Server
}

// New creates a Server routing session events through hub and execution
// requests through sandbox.
func New(cfg *config.Config, hub *session.Hub, sandbox *executor.Sandbox) *Server {
	s := &Server{
		cfg:     cfg,
		hub:     hub,
		sandbox: sandbox,
		router:  chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Liveness probe for operators and load balancers.
	r.Get("/health", s.handleHealth)

	// Session transport
	r.Get("/ws", s.handleWebSocket)

	// API routes for the front-end
	r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)
		r.Get("/languages", s.handleListLanguages)
	})
}

// jsonContentType sets Content-Type to application/json for API routes.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// listenPort resolves a port override against the configured default.
func (s *Server) listenPort(override int) int {
	if override > 0 {
		return override
	}
	return s.cfg.Server.Port
}

// Start begins listening. A non-positive port falls back to the configured
// one.
func (s *Server) Start(port int) error {
	port = s.listenPort(port)
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	log.Info().Int("port", port).Msg("codepair server listening")
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
