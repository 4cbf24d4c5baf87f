package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/stellium/stellium/internal/config"
	"github.com/stellium/stellium/internal/core/admission"
	apperrors "github.com/stellium/stellium/internal/errors"
	"github.com/stellium/stellium/internal/observability"
	"github.com/stellium/stellium/internal/server/handlers"
	servermw "github.com/stellium/stellium/internal/server/middleware"
	"github.com/stellium/stellium/internal/session"
)

// DataStore is the combined persistence surface the API routes need.
type DataStore interface {
	handlers.ProfileStore
	handlers.SwipeStore
	handlers.ConversationStore
}

// Deps carries the wired collaborators for a server instance.
type Deps struct {
	Config    *config.Config
	Store     DataStore
	Admission *admission.Controller
	Sessions  *session.Codec
	Music     handlers.MusicAPI
	Photo     handlers.PhotoAPI
	Scheduler handlers.ReplyScheduler
	Avatars   handlers.AvatarProcessor
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	deps   Deps
	host   string
	port   int
}

// New creates a new HTTP server instance
func New(deps Deps) *Server {
	r := chi.NewRouter()

	// Standard chi middleware
	r.Use(middleware.RealIP)

	// Our custom middleware in correct order (RequestID → Metrics → Recovery)
	r.Use(servermw.RequestID)      // 1. Request ID (early for correlation)
	r.Use(servermw.RequestMetrics) // 2. Metrics (measure everything)
	r.Use(servermw.Recovery)       // 3. Panic recovery (outermost)

	// Standardized error responses using centralized HandleError
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		err := apperrors.NewNotFoundError("The requested resource was not found")
		HandleError(w, req, err)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		err := apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource")
		HandleError(w, req, err)
	})

	s := &Server{
		router: r,
		deps:   deps,
		host:   deps.Config.Server.Host,
		port:   deps.Config.Server.Port,
	}

	// Ensure handlers use the centralized error responder
	handlers.SetHTTPErrorResponder(HandleError)

	// Register routes
	s.registerRoutes()

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	cfg := s.deps.Config.Server
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  timeoutOrDefault(cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: timeoutOrDefault(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  timeoutOrDefault(cfg.IdleTimeout, 120*time.Second),
	}

	observability.ServerLogger.Info("Starting HTTP server",
		zap.String("host", s.host),
		zap.Int("port", s.port),
		zap.String("addr", addr))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	observability.ServerLogger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.port
}

func timeoutOrDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
