// Package security provides token based authentication and request
// hardening for the API
package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/config"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

const (
	// TokenTypeBearer is the token type reported to clients
	TokenTypeBearer = "Bearer"

	audience = "dishgen-api"
)

// Claims represents JWT claims structure
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and validates access tokens. Revoked token ids are
// kept in the cache until the token would have expired anyway.
type TokenService struct {
	config    *config.AuthConfig
	cache     outbound.CacheRepository
	logger    *zap.Logger
	jwtSecret []byte
	now       func() time.Time
}

var _ outbound.TokenIssuer = (*TokenService)(nil)

// NewTokenService creates a new token service
func NewTokenService(cfg *config.AuthConfig, cache outbound.CacheRepository, logger *zap.Logger) *TokenService {
	return &TokenService{
		config:    cfg,
		cache:     cache,
		logger:    logger.Named("token-service"),
		jwtSecret: []byte(cfg.JWTSecret),
		now:       time.Now,
	}
}

// Issue creates a signed access token for the user
func (t *TokenService) Issue(userID uuid.UUID, username string) (*outbound.IssuedToken, error) {
	now := t.now()
	claims := &Claims{
		UserID:   userID.String(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.config.Issuer,
			Subject:   userID.String(),
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.JWTExpiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &outbound.IssuedToken{
		Token:     tokenString,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Validate parses the token, checks its signature and expiry, and rejects
// revoked token ids
func (t *TokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.jwtSecret, nil
	},
		jwt.WithAudience(audience),
		jwt.WithIssuer(t.config.Issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	revoked, err := t.isRevoked(ctx, claims.ID)
	if err != nil {
		t.logger.Warn("Failed to check token revocation", zap.Error(err))
	} else if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Revoke adds a token id to the revocation list until expiresAt
func (t *TokenService) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(t.now())
	if ttl <= 0 {
		return nil
	}
	return t.cache.Set(ctx, revokedKey(tokenID), []byte("revoked"), ttl)
}

func (t *TokenService) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	return t.cache.Exists(ctx, revokedKey(tokenID))
}

// UserUUID returns the authenticated user's id
func (c *Claims) UserUUID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}

// ExpiresAtTime returns the expiry as a time.Time
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("revoked_token:%s", tokenID)
}
