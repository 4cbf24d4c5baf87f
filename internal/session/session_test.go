package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stellium/stellium/internal/core"
)

func requestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestIssueThenReadRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret", false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	codec.Issue(rec, core.ProviderMusic, "access-token-123", time.Hour)

	token, ok := codec.Read(requestWithCookies(t, rec), core.ProviderMusic)
	require.True(t, ok)
	require.Equal(t, "access-token-123", token)
}

func TestIssueSetsCookieAttributes(t *testing.T) {
	codec, err := NewCodec("test-secret", true)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	codec.Issue(rec, core.ProviderPhoto, "tok", 60*24*time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	require.Equal(t, PhotoCookie, cookie.Name)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, int((60 * 24 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestProviderTTLsDiffer(t *testing.T) {
	codec, err := NewCodec("test-secret", false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	codec.Issue(rec, core.ProviderMusic, "m", time.Hour)
	codec.Issue(rec, core.ProviderPhoto, "p", 60*24*time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	require.NotEqual(t, cookies[0].MaxAge, cookies[1].MaxAge)
}

func TestClearRemovesArtifact(t *testing.T) {
	codec, err := NewCodec("test-secret", false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	codec.Clear(rec, core.ProviderMusic)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, MusicCookie, cookies[0].Name)
	require.Less(t, cookies[0].MaxAge, 0)
}

func TestReadRejectsTamperedValue(t *testing.T) {
	codec, err := NewCodec("test-secret", false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	codec.Issue(rec, core.ProviderMusic, "access-token-123", time.Hour)
	issued := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  issued.Name,
		Value: strings.Replace(issued.Value, ".", "x.", 1),
	})

	_, ok := codec.Read(req, core.ProviderMusic)
	require.False(t, ok)
}

func TestReadRejectsForeignSignature(t *testing.T) {
	issuer, err := NewCodec("secret-a", false)
	require.NoError(t, err)
	reader, err := NewCodec("secret-b", false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	issuer.Issue(rec, core.ProviderMusic, "tok", time.Hour)

	_, ok := reader.Read(requestWithCookies(t, rec), core.ProviderMusic)
	require.False(t, ok)
}

func TestReadAbsentCookie(t *testing.T) {
	codec, err := NewCodec("test-secret", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := codec.Read(req, core.ProviderPhoto)
	require.False(t, ok)
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec("  ", false)
	require.Error(t, err)
}
