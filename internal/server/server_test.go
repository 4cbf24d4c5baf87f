package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stellium/stellium/internal/config"
	"github.com/stellium/stellium/internal/core/admission"
	apperrors "github.com/stellium/stellium/internal/errors"
	"github.com/stellium/stellium/internal/session"
)

func newTestServer(t *testing.T, classes map[string]config.AdmissionClass) *Server {
	t.Helper()

	codec, err := session.NewCodec("test-secret", false)
	require.NoError(t, err)

	cfg := &config.Config{
		Server:    config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Admission: config.AdmissionConfig{Classes: classes},
	}

	return New(Deps{
		Config:    cfg,
		Admission: admission.NewController(),
		Sessions:  codec,
	})
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := newTestServer(t, config.AdmissionClassDefaults)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestVerifyEmailRouteEnforcesAdmission(t *testing.T) {
	classes := map[string]config.AdmissionClass{
		"email_validation": {Limit: 2, Window: config.AdmissionClassDefaults["email_validation"].Window},
	}
	srv := newTestServer(t, classes)

	post := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/verify/email",
			strings.NewReader(`{"email":"luna@example.com"}`))
		srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusAccepted, post().Code)
	require.Equal(t, http.StatusAccepted, post().Code)

	rec := post()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestProviderRoutesAreRegistered(t *testing.T) {
	srv := newTestServer(t, config.AdmissionClassDefaults)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/providers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"music"`)
	require.Contains(t, rec.Body.String(), `"photo"`)
}
