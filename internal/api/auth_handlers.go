package api

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/brightlane/qaharbor/internal/api/helpers"
	"github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/auth"
	"github.com/brightlane/qaharbor/internal/storage"
)

// passwordPattern mirrors the field-level constraint on new passwords:
// 6-32 chars drawn from a fixed character class.
var passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9@_.!-]{6,32}$`)

type AuthHandler struct {
	users  *storage.UserRepository
	tokens auth.TokenProvider
	hasher *auth.CredentialHasher
	logger *slog.Logger
}

func NewAuthHandler(users *storage.UserRepository, tokens auth.TokenProvider, hasher *auth.CredentialHasher, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, hasher: hasher, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken           string `json:"accessToken"`
	AccessTokenExpiresAt  string `json:"accessTokenExpiresAt"`
	RefreshToken          string `json:"refreshToken"`
	RefreshTokenExpiresAt string `json:"refreshTokenExpiresAt"`
}

func toTokenPairResponse(pair auth.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:           pair.AccessToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt.Format(timeLayout),
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt.Format(timeLayout),
	}
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Login verifies username/password and issues an access/refresh pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		writeError(w, apierr.WrapValidation(err, "invalid request body"))
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, apierr.NotAuthorized("invalid username or password"))
			return
		}
		writeError(w, err)
		return
	}

	if !h.hasher.Verify(req.Password, user.PasswordSalt, user.PasswordHash) {
		writeError(w, apierr.NotAuthorized("invalid username or password"))
		return
	}

	pair, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.RespondJSON(w, http.StatusCreated, toTokenPairResponse(pair))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		writeError(w, apierr.WrapValidation(err, "invalid request body"))
		return
	}

	claims, err := auth.RequireRefresh(h.tokens, req.RefreshToken)
	if err != nil {
		writeError(w, apierr.NotAuthorized("invalid or expired refresh token"))
		return
	}

	pair, err := h.tokens.IssuePair(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.RespondJSON(w, http.StatusCreated, toTokenPairResponse(pair))
}

type changePasswordRequest struct {
	PasswordOld string `json:"passwordOld"`
	PasswordNew string `json:"passwordNew"`
}

// ChangePassword verifies the caller's current password and replaces it.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		writeError(w, apierr.NotAuthorized("missing authentication"))
		return
	}

	var req changePasswordRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		writeError(w, apierr.WrapValidation(err, "invalid request body"))
		return
	}
	if !passwordPattern.MatchString(req.PasswordNew) {
		writeError(w, apierr.Validation("password must be 6-32 characters from [a-zA-Z0-9@_.!-]"))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.hasher.Verify(req.PasswordOld, user.PasswordSalt, user.PasswordHash) {
		writeError(w, apierr.Validation("current password is incorrect"))
		return
	}

	salt, err := auth.NewSalt()
	if err != nil {
		writeError(w, err)
		return
	}
	hash := h.hasher.Hash(req.PasswordNew, salt)

	if err := h.users.UpdatePassword(r.Context(), userID, salt, hash); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
