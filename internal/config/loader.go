// Package config provides centralized configuration management for Stellium.
// Configuration is layered: built-in defaults, the user config file
// discovered via app identity, then environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// AdmissionClassDefaults are the built-in admission budgets. They are
// applied when the config file does not override a class, so removing a
// class from the file never disables its protection.
var AdmissionClassDefaults = map[string]AdmissionClass{
	"email_validation": {Limit: 10, Window: 300 * time.Second},
	"matches":          {Limit: 30, Window: 60 * time.Second},
	"messages":         {Limit: 30, Window: 60 * time.Second},
	"swipes":           {Limit: 60, Window: 60 * time.Second},
}

// SetDefaults registers every built-in default on the given viper instance.
// Called once during CLI initialization, before any config file is read.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("store.driver", "libsql")

	v.SetDefault("admission.sweep_interval", "5m")
	for name, class := range AdmissionClassDefaults {
		v.SetDefault("admission.classes."+name+".limit", class.Limit)
		v.SetDefault("admission.classes."+name+".window", class.Window.String())
	}

	v.SetDefault("session.secure", true)

	v.SetDefault("auto_reply.min_delay", "1s")
	v.SetDefault("auto_reply.jitter", "1s")

	v.SetDefault("media.thumb_size", 256)
	v.SetDefault("media.max_upload_bytes", 5*1024*1024)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "STRUCTURED")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)

	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.pprof_enabled", false)
}

// Load unmarshals the merged viper state into a typed Config and stores it
// as the current configuration. Safe to call again on config reload.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for name, class := range AdmissionClassDefaults {
		if _, ok := cfg.Admission.Classes[name]; !ok {
			if cfg.Admission.Classes == nil {
				cfg.Admission.Classes = map[string]AdmissionClass{}
			}
			cfg.Admission.Classes[name] = class
		}
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	if strings.TrimSpace(cfg.Media.Dir) == "" {
		cfg.Media.Dir = DefaultMediaDir()
	}

	setConfig(cfg)
	return cfg, nil
}

// ValidateForServe checks the invariants the HTTP server cannot start
// without.
func (c *Config) ValidateForServe() error {
	if strings.TrimSpace(c.Session.Secret) == "" {
		return errors.New("session.secret is required to run the server")
	}
	for name, class := range c.Admission.Classes {
		if class.Limit <= 0 {
			return fmt.Errorf("admission class %s: limit must be positive", name)
		}
		if class.Window <= 0 {
			return fmt.Errorf("admission class %s: window must be positive", name)
		}
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

const appName = "stellium"

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(appName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(appName)
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(appName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + appName + ".db"
	}
	return filepath.Join(dataDir, appName+".db")
}

// DefaultMediaDir returns where processed avatars are stored.
func DefaultMediaDir() string {
	dataDir := gfconfig.GetAppDataDir(appName)
	if strings.TrimSpace(dataDir) == "" {
		return "./media"
	}
	return filepath.Join(dataDir, "media")
}
