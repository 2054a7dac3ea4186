package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brightlane/qaharbor/internal/api/helpers"
	"github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/auth"
	"github.com/brightlane/qaharbor/internal/domain"
	"github.com/brightlane/qaharbor/internal/storage"
)

type APIKeyHandler struct {
	keys   *storage.APIKeyRepository
	hasher *auth.CredentialHasher
}

func NewAPIKeyHandler(keys *storage.APIKeyRepository, hasher *auth.CredentialHasher) *APIKeyHandler {
	return &APIKeyHandler{keys: keys, hasher: hasher}
}

type createAPIKeyRequest struct {
	Description *string `json:"description,omitempty"`
}

type apiKeyCreatedResponse struct {
	ID          string  `json:"id"`
	Key         string  `json:"key"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

// Create mints a new API key and returns its plaintext secret exactly
// once; only the salted hash is persisted.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	var req createAPIKeyRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		writeError(w, apierr.WrapValidation(err, "invalid request body"))
		return
	}

	secret, err := auth.NewAPIKeySecret()
	if err != nil {
		writeError(w, err)
		return
	}
	salt, err := auth.NewSalt()
	if err != nil {
		writeError(w, err)
		return
	}

	key := domain.APIKey{
		ID:          uuid.New(),
		Description: req.Description,
		SecretSalt:  salt,
		SecretHash:  h.hasher.Hash(secret, salt),
		UserID:      userID,
	}
	if err := h.keys.Create(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}

	helpers.RespondJSON(w, http.StatusCreated, apiKeyCreatedResponse{
		ID:          key.ID.String(),
		Key:         auth.EncodeAPIKey(key.ID, secret),
		Description: key.Description,
		CreatedAt:   nowFormatted(),
	})
}

type apiKeyResponse struct {
	ID          string  `json:"id"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toAPIKeyResponse(k domain.APIKey) apiKeyResponse {
	return apiKeyResponse{ID: k.ID.String(), Description: k.Description, CreatedAt: k.CreatedAt.Format(timeLayout)}
}

// List returns the caller's API keys, offset-paginated.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	offset, limit := paginationParams(r)
	keys, total, err := h.keys.ListByUser(r.Context(), userID, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]apiKeyResponse, 0, len(keys))
	for _, k := range keys {
		items = append(items, toAPIKeyResponse(k))
	}
	helpers.RespondJSON(w, http.StatusOK, pagedResponse[apiKeyResponse]{Items: items, Total: total, Offset: offset, Limit: limit})
}

// Get returns one API key owned by the caller.
func (h *APIKeyHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	key, err := h.keys.GetByID(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, apierr.NotFound("api key not found"))
			return
		}
		writeError(w, err)
		return
	}
	helpers.RespondJSON(w, http.StatusOK, toAPIKeyResponse(key))
}

// Delete removes an API key owned by the caller.
func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.keys.DeleteByID(r.Context(), id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, apierr.NotFound("api key not found"))
			return
		}
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
