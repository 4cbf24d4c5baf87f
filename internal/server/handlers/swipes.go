package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/stellium/stellium/internal/core"
	"github.com/stellium/stellium/internal/core/store"
	apperrors "github.com/stellium/stellium/internal/errors"
)

// SwipeStore records swipe decisions.
type SwipeStore interface {
	RecordSwipe(ctx context.Context, swiperID, targetID string, direction core.SwipeDirection) (*store.SwipeResult, error)
}

// SwipesHandler serves swipe recording and match creation.
type SwipesHandler struct {
	Store SwipeStore
}

type swipeRequest struct {
	SwiperID  string `json:"swiper_id"`
	TargetID  string `json:"target_id"`
	Direction string `json:"direction"`
}

type swipeResponse struct {
	Matched      bool               `json:"matched"`
	Conversation *core.Conversation `json:"conversation,omitempty"`
}

// Create handles POST /api/swipes.
func (h *SwipesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid swipe payload"))
		return
	}

	direction := core.SwipeDirection(strings.ToLower(strings.TrimSpace(req.Direction)))
	if direction != core.SwipeLike && direction != core.SwipePass {
		respondWithError(w, r, apperrors.NewValidationError("direction must be like or pass"))
		return
	}
	if strings.TrimSpace(req.SwiperID) == "" || strings.TrimSpace(req.TargetID) == "" {
		respondWithError(w, r, apperrors.NewValidationError("swiper_id and target_id are required"))
		return
	}
	if req.SwiperID == req.TargetID {
		respondWithError(w, r, apperrors.NewValidationError("cannot swipe on yourself"))
		return
	}

	result, err := h.Store.RecordSwipe(r.Context(), req.SwiperID, req.TargetID, direction)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to record swipe"))
		return
	}

	respondJSON(w, http.StatusCreated, swipeResponse{
		Matched:      result.Matched,
		Conversation: result.Conversation,
	})
}
