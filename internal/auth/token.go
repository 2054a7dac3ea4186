package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors surfaced by TokenProvider.
var (
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenWrongKind = errors.New("token is the wrong kind")
)

const (
	// DefaultAccessTokenTTL is the default access token lifetime.
	DefaultAccessTokenTTL = time.Hour
	// DefaultRefreshTokenTTL is the default refresh token lifetime.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// refreshTokenType marks the claim distinguishing refresh tokens from
// access tokens. Its presence, rather than server-side state, is how a
// refresh token is identified.
const refreshTokenType = "refresh"

// Claims is the custom JWT claim set. Type is empty on access tokens so
// the claim is present (via omitempty) only on refresh tokens.
type Claims struct {
	UserID uuid.UUID `json:"sub"`
	Type   string    `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IsRefresh reports whether these claims carry the refresh-token marker.
func (c Claims) IsRefresh() bool {
	return c.Type == refreshTokenType
}

// TokenPair is the response shape for login/refresh.
type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// TokenProvider issues and verifies the access/refresh token pair.
type TokenProvider interface {
	IssuePair(userID uuid.UUID) (TokenPair, error)
	Verify(tokenString string) (*Claims, error)
}

// JWTProvider implements TokenProvider over HS256: both token kinds share
// one secret, distinguished only by the "type" claim.
type JWTProvider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTProvider builds a provider. Zero durations fall back to the
// package defaults (1h access / 7d refresh).
func NewJWTProvider(secret []byte, accessTTL, refreshTTL time.Duration) *JWTProvider {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &JWTProvider{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssuePair creates a fresh access/refresh token pair for userID.
func (p *JWTProvider) IssuePair(userID uuid.UUID) (TokenPair, error) {
	now := time.Now()

	access, accessExp, err := p.sign(userID, "", now, p.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, refreshExp, err := p.sign(userID, refreshTokenType, now, p.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

func (p *JWTProvider) sign(userID uuid.UUID, kind string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := Claims{
		UserID: userID,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates tokenString, returning its claims. It does
// not enforce token kind on its own — which kinds are acceptable differs
// per endpoint, so callers use RequireAccess/RequireRefresh.
func (p *JWTProvider) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// RequireAccess verifies tokenString and rejects it if it carries the
// refresh-token marker: refresh tokens must only be used against the
// refresh endpoint, never as a bearer credential elsewhere.
func RequireAccess(p TokenProvider, tokenString string) (*Claims, error) {
	claims, err := p.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.IsRefresh() {
		return nil, ErrTokenWrongKind
	}
	return claims, nil
}

// RequireRefresh verifies tokenString and requires the refresh-token
// marker to be present.
func RequireRefresh(p TokenProvider, tokenString string) (*Claims, error) {
	claims, err := p.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefresh() {
		return nil, ErrTokenWrongKind
	}
	return claims, nil
}
