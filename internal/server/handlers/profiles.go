package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/stellium/stellium/internal/errors"
	"github.com/stellium/stellium/internal/core"
)

// ProfileStore is the slice of the data layer the profile handlers need.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile core.Profile) (*core.Profile, error)
	UpdateProfile(ctx context.Context, profile core.Profile) (*core.Profile, error)
	GetProfile(ctx context.Context, id string) (*core.Profile, error)
	ListCandidates(ctx context.Context, memberID string, limit int) ([]core.Profile, error)
	SetAvatarPath(ctx context.Context, id, path string) error
}

// AvatarProcessor stores uploaded avatar images.
type AvatarProcessor interface {
	StoreAvatar(profileID string, upload io.Reader) (string, error)
}

// ProfilesHandler serves profile CRUD and candidate discovery.
type ProfilesHandler struct {
	Store          ProfileStore
	Avatars        AvatarProcessor
	MaxUploadBytes int64
}

type profileRequest struct {
	DisplayName string         `json:"display_name"`
	BirthDate   string         `json:"birth_date,omitempty"`
	SunSign     string         `json:"sun_sign,omitempty"`
	Bio         string         `json:"bio,omitempty"`
	ExtraData   map[string]any `json:"extra_data,omitempty"`
}

// Create handles POST /api/profiles.
func (h *ProfilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid profile payload"))
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		respondWithError(w, r, apperrors.NewValidationError("display_name is required"))
		return
	}

	profile, err := h.Store.CreateProfile(r.Context(), core.Profile{
		DisplayName: req.DisplayName,
		BirthDate:   req.BirthDate,
		SunSign:     req.SunSign,
		Bio:         req.Bio,
		ExtraData:   req.ExtraData,
	})
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to create profile"))
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// Get handles GET /api/profiles/{profileID}.
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "profileID")

	profile, err := h.Store.GetProfile(r.Context(), id)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to fetch profile"))
		return
	}
	if profile == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("profile not found"))
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/profiles/{profileID}.
func (h *ProfilesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "profileID")

	existing, err := h.Store.GetProfile(r.Context(), id)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to fetch profile"))
		return
	}
	if existing == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("profile not found"))
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid profile payload"))
		return
	}

	if strings.TrimSpace(req.DisplayName) != "" {
		existing.DisplayName = req.DisplayName
	}
	if req.BirthDate != "" {
		existing.BirthDate = req.BirthDate
	}
	if req.SunSign != "" {
		existing.SunSign = req.SunSign
	}
	if req.Bio != "" {
		existing.Bio = req.Bio
	}
	if req.ExtraData != nil {
		existing.ExtraData = req.ExtraData
	}

	updated, err := h.Store.UpdateProfile(r.Context(), *existing)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to update profile"))
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Candidates handles GET /api/candidates?member_id=X&limit=N.
func (h *ProfilesHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	memberID := strings.TrimSpace(r.URL.Query().Get("member_id"))
	if memberID == "" {
		respondWithError(w, r, apperrors.NewValidationError("member_id is required"))
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, r, apperrors.NewValidationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	candidates, err := h.Store.ListCandidates(r.Context(), memberID, limit)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to list candidates"))
		return
	}
	if candidates == nil {
		candidates = []core.Profile{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

// UploadAvatar handles POST /api/profiles/{profileID}/avatar with a multipart
// "avatar" file field.
func (h *ProfilesHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "profileID")

	profile, err := h.Store.GetProfile(r.Context(), id)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to fetch profile"))
		return
	}
	if profile == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("profile not found"))
		return
	}

	maxBytes := h.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, _, err := r.FormFile("avatar")
	if err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "avatar file field is required"))
		return
	}
	defer file.Close() // nolint:errcheck // best-effort cleanup on upload

	path, err := h.Avatars.StoreAvatar(id, file)
	if err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "could not process avatar image"))
		return
	}

	if err := h.Store.SetAvatarPath(r.Context(), id, path); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to record avatar"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"avatar_path": path})
}
