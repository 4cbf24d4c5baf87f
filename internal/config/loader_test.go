package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViperWithDefaults() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", t.TempDir())

		cfg, err := Load(newViperWithDefaults())
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

		assert.Equal(t, "libsql", cfg.Store.Driver)
		assert.NotEmpty(t, cfg.Store.Path)

		assert.Equal(t, 5*time.Minute, cfg.Admission.SweepInterval)
		assert.Equal(t, AdmissionClass{Limit: 10, Window: 300 * time.Second}, cfg.Admission.Classes["email_validation"])
		assert.Equal(t, AdmissionClass{Limit: 30, Window: time.Minute}, cfg.Admission.Classes["matches"])
		assert.Equal(t, AdmissionClass{Limit: 30, Window: time.Minute}, cfg.Admission.Classes["messages"])
		assert.Equal(t, AdmissionClass{Limit: 60, Window: time.Minute}, cfg.Admission.Classes["swipes"])

		assert.True(t, cfg.Session.Secure)
		assert.Equal(t, time.Second, cfg.AutoReply.MinDelay)
		assert.Equal(t, time.Second, cfg.AutoReply.Jitter)
		assert.Equal(t, 256, cfg.Media.ThumbSize)

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.True(t, cfg.Metrics.Enabled)
		assert.True(t, cfg.Health.Enabled)
	})

	t.Run("OverridesReplaceDefaults", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", t.TempDir())

		v := newViperWithDefaults()
		v.Set("server.port", 9999)
		v.Set("admission.classes.messages.limit", 5)
		v.Set("admission.classes.messages.window", "30s")
		v.Set("auto_reply.min_delay", "250ms")

		cfg, err := Load(v)
		require.NoError(t, err)

		assert.Equal(t, 9999, cfg.Server.Port)
		assert.Equal(t, AdmissionClass{Limit: 5, Window: 30 * time.Second}, cfg.Admission.Classes["messages"])
		assert.Equal(t, 250*time.Millisecond, cfg.AutoReply.MinDelay)
		// Untouched classes keep their built-in budgets.
		assert.Equal(t, AdmissionClass{Limit: 60, Window: time.Minute}, cfg.Admission.Classes["swipes"])
	})

	t.Run("GetConfigReturnsLoaded", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", t.TempDir())

		cfg, err := Load(newViperWithDefaults())
		require.NoError(t, err)
		assert.Same(t, cfg, GetConfig())
	})
}

func TestValidateForServe(t *testing.T) {
	t.Run("RequiresSessionSecret", func(t *testing.T) {
		cfg := &Config{Admission: AdmissionConfig{Classes: AdmissionClassDefaults}}
		require.Error(t, cfg.ValidateForServe())

		cfg.Session.Secret = "s3cret"
		require.NoError(t, cfg.ValidateForServe())
	})

	t.Run("RejectsNonPositiveBudgets", func(t *testing.T) {
		cfg := &Config{
			Session: SessionConfig{Secret: "s3cret"},
			Admission: AdmissionConfig{Classes: map[string]AdmissionClass{
				"messages": {Limit: 0, Window: time.Minute},
			}},
		}
		require.Error(t, cfg.ValidateForServe())

		cfg.Admission.Classes["messages"] = AdmissionClass{Limit: 10, Window: 0}
		require.Error(t, cfg.ValidateForServe())
	})
}
