package handlers

import (
	"net/http"
	"net/mail"
	"strings"

	apperrors "github.com/stellium/stellium/internal/errors"
)

type verifyEmailRequest struct {
	Email string `json:"email"`
}

// VerifyEmailHandler handles POST /api/verify/email. It validates the
// address shape and accepts the request; actual mail delivery is handled by
// a separate system. The route sits behind the tightest admission class
// because each accepted request costs an outbound email.
func VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid verification payload"))
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		respondWithError(w, r, apperrors.NewValidationError("email is required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondWithError(w, r, apperrors.NewValidationError("email address is not valid"))
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
