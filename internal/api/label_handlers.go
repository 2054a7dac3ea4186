package api

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/brightlane/qaharbor/internal/api/helpers"
	"github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/domain"
	"github.com/brightlane/qaharbor/internal/storage"
)

type LabelHandler struct {
	labels   *storage.LabelRepository
	sessions *storage.SessionRepository
}

func NewLabelHandler(labels *storage.LabelRepository, sessions *storage.SessionRepository) *LabelHandler {
	return &LabelHandler{labels: labels, sessions: sessions}
}

type labelResponse struct {
	ID        int64   `json:"id"`
	Key       string  `json:"key"`
	Value     *string `json:"value"`
	SessionID string  `json:"sessionId"`
	CreatedAt string  `json:"createdAt"`
}

func toLabelResponse(l domain.Label) labelResponse {
	return labelResponse{ID: l.ID, Key: l.Key, Value: l.Value, SessionID: l.SessionID.String(), CreatedAt: l.CreatedAt.Format(timeLayout)}
}

// List returns the labels attached to a session owned by the caller.
func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	sessionIDRaw := r.URL.Query().Get("session_id")
	if sessionIDRaw == "" {
		writeError(w, apierr.Validation("session_id is required"))
		return
	}
	sessionID, err := uuidFromString(sessionIDRaw)
	if err != nil {
		writeError(w, apierr.WrapValidation(err, "invalid session_id"))
		return
	}

	if _, err := h.sessions.GetByID(r.Context(), sessionID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, apierr.NotFound("session not found"))
			return
		}
		writeError(w, err)
		return
	}

	offset, limit := paginationParams(r)
	labels, total, err := h.labels.ListBySession(r.Context(), sessionID, userID, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]labelResponse, 0, len(labels))
	for _, l := range labels {
		items = append(items, toLabelResponse(l))
	}
	helpers.RespondJSON(w, http.StatusOK, pagedResponse[labelResponse]{Items: items, Total: total, Offset: offset, Limit: limit})
}
