package server

import (
	"context"
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"

	"github.com/stellium/stellium/internal/appid"
	"github.com/stellium/stellium/internal/observability"
	"github.com/stellium/stellium/internal/server/handlers"
	servermw "github.com/stellium/stellium/internal/server/middleware"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// Standard health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	admit := servermw.Admission(s.deps.Admission, s.deps.Config.Admission.Classes)

	profiles := &handlers.ProfilesHandler{
		Store:          s.deps.Store,
		Avatars:        s.deps.Avatars,
		MaxUploadBytes: s.deps.Config.Media.MaxUploadBytes,
	}
	swipes := &handlers.SwipesHandler{Store: s.deps.Store}
	conversations := &handlers.ConversationsHandler{
		Store:     s.deps.Store,
		Scheduler: s.deps.Scheduler,
	}
	providers := &handlers.ProvidersHandler{
		Sessions: s.deps.Sessions,
		Music:    s.deps.Music,
		Photo:    s.deps.Photo,
	}

	// Email validation sits behind the tightest admission class.
	s.router.With(admit("email_validation")).Post("/api/verify/email", handlers.VerifyEmailHandler)

	// Profiles
	s.router.Post("/api/profiles", profiles.Create)
	s.router.Get("/api/profiles/{profileID}", profiles.Get)
	s.router.Put("/api/profiles/{profileID}", profiles.Update)
	s.router.Post("/api/profiles/{profileID}/avatar", profiles.UploadAvatar)
	s.router.With(admit("matches")).Get("/api/candidates", profiles.Candidates)

	// Swipes
	s.router.With(admit("swipes")).Post("/api/swipes", swipes.Create)

	// Conversations and messages
	s.router.Get("/api/conversations", conversations.List)
	s.router.Delete("/api/conversations/{conversationID}", conversations.Delete)
	s.router.Get("/api/conversations/{conversationID}/messages", conversations.Messages)
	s.router.With(admit("messages")).Post("/api/conversations/{conversationID}/messages", conversations.PostMessage)

	// Provider OAuth and resources
	s.router.Get("/auth/{provider}/callback", providers.Callback)
	s.router.Get("/api/providers", providers.Status)
	s.router.Delete("/api/providers/{provider}", providers.Disconnect)
	s.router.Get("/api/providers/music/profile", providers.MusicProfile)
	s.router.Get("/api/providers/photo/media", providers.PhotoMedia)

	// Admin signal endpoint (optional, requires STELLIUM_ADMIN_TOKEN)
	s.registerAdminEndpoint()
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	// Get admin token from environment (identity-aware)
	ctx := context.Background()
	identity, _ := appid.Get(ctx)
	envPrefix := "STELLIUM_"
	if identity != nil && identity.EnvPrefix != "" {
		envPrefix = identity.EnvPrefix
	}

	adminToken := os.Getenv(envPrefix + "ADMIN_TOKEN")
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + envPrefix + "ADMIN_TOKEN set)")
		}
		return
	}

	// Create HTTP signal handler with bearer token auth and rate limiting
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // 10 requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // use default global manager
	})

	// Register admin endpoint
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
