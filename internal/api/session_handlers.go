package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/brightlane/qaharbor/internal/api/helpers"
	"github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/domain"
	"github.com/brightlane/qaharbor/internal/storage"
)

type SessionHandler struct {
	sessions *storage.SessionRepository
}

func NewSessionHandler(sessions *storage.SessionRepository) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionResponse struct {
	ID          string          `json:"id"`
	Description *string         `json:"description,omitempty"`
	Baggage     json.RawMessage `json:"baggage,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

func toSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{
		ID:          s.ID.String(),
		Description: s.Description,
		Baggage:     json.RawMessage(s.Baggage),
		CreatedAt:   s.CreatedAt.Format(timeLayout),
		UpdatedAt:   s.UpdatedAt.Format(timeLayout),
	}
}

// List returns the caller's sessions, newest first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	offset, limit := paginationParams(r)
	sessions, total, err := h.sessions.ListByUser(r.Context(), userID, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, toSessionResponse(s))
	}
	helpers.RespondJSON(w, http.StatusOK, pagedResponse[sessionResponse]{Items: items, Total: total, Offset: offset, Limit: limit})
}

// Get returns one session owned by the caller.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := h.sessions.GetByID(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, apierr.NotFound("session not found"))
			return
		}
		writeError(w, err)
		return
	}
	helpers.RespondJSON(w, http.StatusOK, toSessionResponse(session))
}
