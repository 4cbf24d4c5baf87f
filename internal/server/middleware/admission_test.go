package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stellium/stellium/internal/config"
	"github.com/stellium/stellium/internal/core/admission"
)

func TestAdmissionMiddleware(t *testing.T) {
	classes := map[string]config.AdmissionClass{
		"messages": {Limit: 2, Window: time.Minute},
	}

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("DeniesAfterBudgetExhausted", func(t *testing.T) {
		ctrl := admission.NewController()
		handler := Admission(ctrl, classes)("messages")(okHandler)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7")
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		require.Contains(t, rec.Body.String(), "RATE_LIMITED")
	})

	t.Run("IsolatesCallers", func(t *testing.T) {
		ctrl := admission.NewController()
		handler := Admission(ctrl, classes)("messages")(okHandler)

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7")
			handler.ServeHTTP(rec, req)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.2")
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("UnknownClassAdmits", func(t *testing.T) {
		ctrl := admission.NewController()
		handler := Admission(ctrl, classes)("no-such-class")(okHandler)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
