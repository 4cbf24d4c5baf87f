package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stellium/stellium/internal/appid"
)

func TestAppIdentityLoading(t *testing.T) {
	t.Run("load app identity from embedded app.yaml", func(t *testing.T) {
		// Load app identity the same way the application does
		ctx := context.Background()
		identity, err := appid.Get(ctx)

		if err != nil {
			t.Fatalf("Failed to load app identity: %v", err)
		}

		if identity == nil {
			t.Fatal("App identity is nil")
		}

		t.Logf("Loaded identity: %+v", identity)

		expectedFields := map[string]string{
			"Vendor":     identity.Vendor,
			"BinaryName": identity.BinaryName,
			"EnvPrefix":  identity.EnvPrefix,
			"ConfigName": identity.ConfigName,
		}

		for fieldName, value := range expectedFields {
			if value == "" {
				t.Errorf("App identity field %s is empty (expected: non-empty)", fieldName)
			}
		}

		if identity.EnvPrefix != "" && !strings.HasSuffix(identity.EnvPrefix, "_") {
			t.Errorf("Expected env_prefix to end with underscore, got '%s'", identity.EnvPrefix)
		}
	})
}
