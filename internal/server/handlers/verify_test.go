package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyEmailHandler(t *testing.T) {
	t.Run("AcceptsValidAddress", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/verify/email",
			strings.NewReader(`{"email":"luna@example.com"}`))

		VerifyEmailHandler(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Contains(t, rec.Body.String(), `"accepted"`)
	})

	t.Run("RejectsMalformedAddress", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/verify/email",
			strings.NewReader(`{"email":"not-an-email"}`))

		VerifyEmailHandler(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("RejectsBlankAddress", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/verify/email",
			strings.NewReader(`{"email":"  "}`))

		VerifyEmailHandler(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("RejectsBadJSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/verify/email",
			strings.NewReader(`{`))

		VerifyEmailHandler(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
