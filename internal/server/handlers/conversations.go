package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stellium/stellium/internal/core"
	apperrors "github.com/stellium/stellium/internal/errors"
	"github.com/stellium/stellium/internal/metrics"
)

// ConversationStore is the slice of the data layer the conversation
// handlers need.
type ConversationStore interface {
	ListConversations(ctx context.Context, memberID string) ([]core.Conversation, error)
	GetConversation(ctx context.Context, id string) (*core.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, conversationID, authorID, body string) (*core.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]core.Message, error)
}

// ReplyScheduler queues deferred persona replies.
type ReplyScheduler interface {
	Schedule(conversationID, personaID string) time.Duration
}

// ConversationsHandler serves conversation listing, messaging, and deletion.
type ConversationsHandler struct {
	Store     ConversationStore
	Scheduler ReplyScheduler
}

// List handles GET /api/conversations?member_id=X.
func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	memberID := strings.TrimSpace(r.URL.Query().Get("member_id"))
	if memberID == "" {
		respondWithError(w, r, apperrors.NewValidationError("member_id is required"))
		return
	}

	conversations, err := h.Store.ListConversations(r.Context(), memberID)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to list conversations"))
		return
	}
	if conversations == nil {
		conversations = []core.Conversation{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

// Delete handles DELETE /api/conversations/{conversationID}. Deleting an
// absent conversation still succeeds; any reply already queued against it
// will notice at fire time and skip.
func (h *ConversationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	if err := h.Store.DeleteConversation(r.Context(), id); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to delete conversation"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Messages handles GET /api/conversations/{conversationID}/messages.
func (h *ConversationsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	conv, err := h.Store.GetConversation(r.Context(), id)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to fetch conversation"))
		return
	}
	if conv == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("conversation not found"))
		return
	}

	messages, err := h.Store.ListMessages(r.Context(), id)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to list messages"))
		return
	}
	if messages == nil {
		messages = []core.Message{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

type messageRequest struct {
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
}

// PostMessage handles POST /api/conversations/{conversationID}/messages.
// A message into a persona conversation arms exactly one deferred reply;
// the sender's request completes without waiting on it.
func (h *ConversationsHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	conv, err := h.Store.GetConversation(r.Context(), id)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to fetch conversation"))
		return
	}
	if conv == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("conversation not found"))
		return
	}

	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid message payload"))
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		respondWithError(w, r, apperrors.NewValidationError("message body is required"))
		return
	}
	authorID := strings.TrimSpace(req.AuthorID)
	if authorID == "" {
		respondWithError(w, r, apperrors.NewValidationError("author_id is required"))
		return
	}
	if authorID != conv.MemberID && authorID != conv.CounterpartID {
		respondWithError(w, r, apperrors.NewValidationError("author is not part of this conversation"))
		return
	}

	msg, err := h.Store.AppendMessage(r.Context(), id, authorID, req.Body)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to store message"))
		return
	}

	if conv.IsPersona && authorID != conv.CounterpartID && h.Scheduler != nil {
		h.Scheduler.Schedule(conv.ID, conv.CounterpartID)
		metrics.RecordAutoReply("scheduled")
	}

	respondJSON(w, http.StatusCreated, msg)
}
