package config

import (
	"time"
)

// Config represents the complete application configuration. Values are
// layered: built-in defaults, then the user config file, then environment
// variables and flags.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Admission AdmissionConfig `mapstructure:"admission"`
	Session   SessionConfig   `mapstructure:"session"`
	Providers ProvidersConfig `mapstructure:"providers"`
	AutoReply AutoReplyConfig `mapstructure:"auto_reply"`
	Media     MediaConfig     `mapstructure:"media"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
	Debug     DebugConfig     `mapstructure:"debug"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// AdmissionConfig controls request admission windows. Classes maps a class
// name to its per-caller budget.
type AdmissionConfig struct {
	SweepInterval time.Duration             `mapstructure:"sweep_interval"`
	Classes       map[string]AdmissionClass `mapstructure:"classes"`
}

// AdmissionClass is one admission budget: Limit requests per Window.
type AdmissionClass struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// SessionConfig controls signed session cookies.
type SessionConfig struct {
	// Secret signs session cookies. Required; the server refuses to start
	// without it.
	Secret string `mapstructure:"secret"`

	// Secure marks cookies HTTPS-only. Disable for local development only.
	Secure bool `mapstructure:"secure"`
}

// ProvidersConfig holds credentials for the integrated providers.
type ProvidersConfig struct {
	Music ProviderConfig `mapstructure:"music"`
	Photo ProviderConfig `mapstructure:"photo"`
}

// ProviderConfig is one provider's registered OAuth application.
type ProviderConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	TokenURL     string `mapstructure:"token_url"`
	APIBaseURL   string `mapstructure:"api_base_url"`
}

// AutoReplyConfig controls deferred persona replies.
type AutoReplyConfig struct {
	MinDelay time.Duration `mapstructure:"min_delay"`
	Jitter   time.Duration `mapstructure:"jitter"`
}

// MediaConfig controls avatar processing and storage.
type MediaConfig struct {
	// Dir is where processed avatars are written. Empty means the app data
	// directory.
	Dir string `mapstructure:"dir"`

	// ThumbSize is the square avatar thumbnail edge in pixels.
	ThumbSize int `mapstructure:"thumb_size"`

	// MaxUploadBytes caps avatar upload size.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// LoggingConfig contains logging configuration
// Supports progressive logging profiles:
// - SIMPLE: Console output only, minimal configuration (CLI tools)
// - STRUCTURED: Structured sinks, correlation IDs (API services)
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	// Metrics are also available at the main HTTP port in JSON format
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	// Enabled controls whether health endpoints are exposed
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig contains debug and profiling configuration
type DebugConfig struct {
	// Enabled controls whether debug mode is active
	Enabled bool `mapstructure:"enabled"`

	// PprofEnabled controls whether pprof endpoints are exposed
	// WARNING: Only enable in development/staging environments
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}
