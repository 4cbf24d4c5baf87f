package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/stellium/stellium/internal/autoreply"
	"github.com/stellium/stellium/internal/config"
	"github.com/stellium/stellium/internal/core/admission"
	"github.com/stellium/stellium/internal/core/store"
	errwrap "github.com/stellium/stellium/internal/errors"
	"github.com/stellium/stellium/internal/media"
	"github.com/stellium/stellium/internal/metrics"
	"github.com/stellium/stellium/internal/observability"
	"github.com/stellium/stellium/internal/provider"
	"github.com/stellium/stellium/internal/server"
	"github.com/stellium/stellium/internal/server/handlers"
	"github.com/stellium/stellium/internal/session"
)

var (
	serverPort int
	serverHost string
)

// signalHealthChecker implements HealthChecker for signal system
type signalHealthChecker struct{}

func (s signalHealthChecker) CheckHealth(ctx context.Context) error {
	// Signal handlers are registered and ready
	return nil
}

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// identityHealthChecker validates app identity metadata
type identityHealthChecker struct {
	binaryName string
	envPrefix  string
	configName string
}

func (i identityHealthChecker) CheckHealth(ctx context.Context) error {
	switch {
	case i.binaryName == "":
		return errwrap.NewConfigInvalidError("app identity missing binary name")
	case i.envPrefix == "":
		return errwrap.NewConfigInvalidError("app identity missing env prefix")
	case i.configName == "":
		return errwrap.NewConfigInvalidError("app identity missing config name")
	}
	return nil
}

func providerClientConfig(pc config.ProviderConfig) provider.Config {
	return provider.Config{
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		RedirectURI:  pc.RedirectURI,
		TokenURL:     pc.TokenURL,
		APIBaseURL:   pc.APIBaseURL,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (placeholder - restart recommended)

The server will cleanly shut down the HTTP server, cancel pending
auto-replies, close the store, and flush logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get app identity for telemetry namespace
		identity := GetAppIdentity()
		namespace := identity.TelemetryNamespace()

		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "failed to load configuration")
		}
		if err := cfg.ValidateForServe(); err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration is not valid for serve")
		}

		// Initialize server logger with namespace
		observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, namespace)

		metricsPort := cfg.Metrics.Port
		if metricsPort == 0 {
			metricsPort = 9090
		}

		// Initialize metrics with namespace
		if err := observability.InitMetrics(identity.BinaryName, metricsPort, namespace); err != nil {
			observability.ServerLogger.Error("Failed to initialize metrics",
				zap.Error(err))
			return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
		}

		observability.ServerLogger.Info("Initializing server",
			zap.String("service", identity.BinaryName),
			zap.String("namespace", namespace),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Int("metrics_port", metricsPort))

		// Open the store and run migrations
		db, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return errwrap.WrapDatabaseError(cmd.Context(), err, "failed to open store")
		}
		if err := db.Migrate(cmd.Context()); err != nil {
			_ = db.Close()
			return errwrap.WrapDatabaseError(cmd.Context(), err, "failed to migrate store")
		}

		// Initialize health manager
		handlers.InitHealthManager(versionInfo.Version)
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("store", db)
		hm.RegisterChecker("signal_handlers", signalHealthChecker{})
		hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		hm.RegisterChecker("app_identity", identityHealthChecker{
			binaryName: identity.BinaryName,
			envPrefix:  identity.EnvPrefix,
			configName: identity.ConfigName,
		})

		// Admission controller with background window sweep
		ctrl := admission.NewController()
		sweepCtx, cancelSweep := context.WithCancel(context.Background())
		go ctrl.StartSweep(sweepCtx, cfg.Admission.SweepInterval)

		// Session cookie codec
		codec, err := session.NewCodec(cfg.Session.Secret, cfg.Session.Secure)
		if err != nil {
			cancelSweep()
			_ = db.Close()
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "invalid session configuration")
		}

		// Provider clients
		music := &provider.MusicClient{Config: providerClientConfig(cfg.Providers.Music)}
		photo := &provider.PhotoClient{Config: providerClientConfig(cfg.Providers.Photo)}

		// Deferred persona replies
		scheduler := autoreply.NewScheduler(db, observability.ServerLogger,
			cfg.AutoReply.MinDelay, cfg.AutoReply.Jitter)

		// Avatar processing
		avatars, err := media.NewProcessor(cfg.Media.Dir, cfg.Media.ThumbSize)
		if err != nil {
			cancelSweep()
			_ = db.Close()
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "invalid media configuration")
		}

		// Create server
		srv := server.New(server.Deps{
			Config:    cfg,
			Store:     db,
			Admission: ctrl,
			Sessions:  codec,
			Music:     music,
			Photo:     photo,
			Scheduler: scheduler,
			Avatars:   avatars,
		})

		// Set app identity for handlers
		handlers.SetAppIdentity(identity)

		metrics.SetServerStartTime(time.Now().Unix())

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Register graceful shutdown handlers (LIFO order - last registered, first executed)
		// Handler 1: Flush logger (executed last)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing logger...")
			if err := observability.ServerLogger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			return nil
		})

		// Handler 2: Stop background work and close the store
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Cancelling pending auto-replies and closing store...")
			scheduler.Stop()
			cancelSweep()
			if err := db.Close(); err != nil {
				return errwrap.WrapDatabaseError(ctx, err, "store close failed")
			}
			return nil
		})

		// Handler 3: Shutdown HTTP server (executed first)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		// Register config reload handler (SIGHUP)
		signals.OnReload(func(ctx context.Context) error {
			observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); ok {
					observability.ServerLogger.Info("No config file found - using defaults and environment variables")
					return nil
				}
				observability.ServerLogger.Error("Failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			if _, err := config.Load(viper.GetViper()); err != nil {
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			observability.ServerLogger.Info("Configuration reloaded successfully",
				zap.String("file", viper.ConfigFileUsed()))

			// Admission budgets and server timeouts pick up the new values on
			// restart; only log level changes apply live today.

			return nil
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		// Start server in background goroutine
		errChan := make(chan error, 1)
		go func() {
			observability.ServerLogger.Info("Starting HTTP server...",
				zap.String("host", cfg.Server.Host),
				zap.Int("port", cfg.Server.Port))
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		// Start signal listener in background
		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		// Wait for error or shutdown completion
		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "127.0.0.1", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
