package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stellium/stellium/internal/core"
	apperrors "github.com/stellium/stellium/internal/errors"
	"github.com/stellium/stellium/internal/metrics"
	"github.com/stellium/stellium/internal/provider"
	"github.com/stellium/stellium/internal/session"
)

// MusicAPI is the music provider surface the handlers need.
type MusicAPI interface {
	Exchange(ctx context.Context, code string) (*provider.Token, error)
	TokenTTL() time.Duration
	Profile(ctx context.Context, accessToken string) (*provider.MusicProfile, error)
}

// PhotoAPI is the photo provider surface the handlers need.
type PhotoAPI interface {
	Exchange(ctx context.Context, code string) (*provider.Token, error)
	TokenTTL() time.Duration
	Media(ctx context.Context, accessToken string) ([]provider.PhotoMedia, error)
}

// ProvidersHandler serves OAuth callbacks and provider resource endpoints.
type ProvidersHandler struct {
	Sessions *session.Codec
	Music    MusicAPI
	Photo    PhotoAPI
}

func parseProviderID(raw string) (core.ProviderID, bool) {
	switch core.ProviderID(raw) {
	case core.ProviderMusic:
		return core.ProviderMusic, true
	case core.ProviderPhoto:
		return core.ProviderPhoto, true
	default:
		return "", false
	}
}

// Callback handles GET /auth/{provider}/callback. The user lands here from
// the provider's consent screen; any failure redirects back to the app root
// with an error flag rather than an API error body.
func (h *ProvidersHandler) Callback(w http.ResponseWriter, r *http.Request) {
	providerID, ok := parseProviderID(chi.URLParam(r, "provider"))
	if !ok {
		respondWithError(w, r, apperrors.NewNotFoundError("unknown provider"))
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	if query.Get("error") != "" || code == "" {
		http.Redirect(w, r, "/?"+string(providerID)+"=error", http.StatusFound)
		return
	}

	var (
		token *provider.Token
		ttl   time.Duration
		err   error
	)
	switch providerID {
	case core.ProviderMusic:
		token, err = h.Music.Exchange(r.Context(), code)
		ttl = h.Music.TokenTTL()
	case core.ProviderPhoto:
		token, err = h.Photo.Exchange(r.Context(), code)
		ttl = h.Photo.TokenTTL()
	}

	metrics.RecordProviderExchange(string(providerID), err == nil)
	if err != nil {
		http.Redirect(w, r, "/?"+string(providerID)+"=error", http.StatusFound)
		return
	}

	h.Sessions.Issue(w, providerID, token.AccessToken, ttl)
	http.Redirect(w, r, "/?"+string(providerID)+"=connected", http.StatusFound)
}

// Status handles GET /api/providers. Connected means exactly that a valid
// session cookie is present; no provider call is made.
func (h *ProvidersHandler) Status(w http.ResponseWriter, r *http.Request) {
	_, musicOK := h.Sessions.Read(r, core.ProviderMusic)
	_, photoOK := h.Sessions.Read(r, core.ProviderPhoto)

	respondJSON(w, http.StatusOK, map[string]any{
		"music": map[string]bool{"connected": musicOK},
		"photo": map[string]bool{"connected": photoOK},
	})
}

// Disconnect handles DELETE /api/providers/{provider}.
func (h *ProvidersHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	providerID, ok := parseProviderID(chi.URLParam(r, "provider"))
	if !ok {
		respondWithError(w, r, apperrors.NewNotFoundError("unknown provider"))
		return
	}

	h.Sessions.Clear(w, providerID)
	w.WriteHeader(http.StatusNoContent)
}

// MusicProfile handles GET /api/providers/music/profile.
func (h *ProvidersHandler) MusicProfile(w http.ResponseWriter, r *http.Request) {
	token, ok := h.Sessions.Read(r, core.ProviderMusic)
	if !ok {
		respondWithError(w, r, apperrors.NewUnauthorizedError("music account is not connected"))
		return
	}

	profile, err := h.Music.Profile(r.Context(), token)
	if err != nil {
		h.respondProviderError(w, r, core.ProviderMusic, err)
		return
	}

	metrics.RecordProviderCall(string(core.ProviderMusic), "success")
	respondJSON(w, http.StatusOK, profile)
}

// PhotoMedia handles GET /api/providers/photo/media.
func (h *ProvidersHandler) PhotoMedia(w http.ResponseWriter, r *http.Request) {
	token, ok := h.Sessions.Read(r, core.ProviderPhoto)
	if !ok {
		respondWithError(w, r, apperrors.NewUnauthorizedError("photo account is not connected"))
		return
	}

	media, err := h.Photo.Media(r.Context(), token)
	if err != nil {
		h.respondProviderError(w, r, core.ProviderPhoto, err)
		return
	}

	metrics.RecordProviderCall(string(core.ProviderPhoto), "success")
	respondJSON(w, http.StatusOK, map[string]any{"media": media})
}

// respondProviderError maps a provider failure to a response. A rejected
// credential tears down the session cookie so the client restarts the flow
// instead of replaying a dead token.
func (h *ProvidersHandler) respondProviderError(w http.ResponseWriter, r *http.Request, providerID core.ProviderID, err error) {
	if errors.Is(err, provider.ErrAuthRejected) {
		metrics.RecordProviderCall(string(providerID), "auth_rejected")
		h.Sessions.Clear(w, providerID)
		respondWithError(w, r, apperrors.WrapUnauthorized(r.Context(), err, string(providerID)+" credential was rejected"))
		return
	}

	metrics.RecordProviderCall(string(providerID), "error")
	respondWithError(w, r, apperrors.WrapExternalService(r.Context(), err, string(providerID)+" provider is unavailable"))
}
