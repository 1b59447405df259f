package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/http/response"
	"github.com/alchemorsel/dishgen/internal/infrastructure/security"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller of a request
type Principal struct {
	UserID    uuid.UUID
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// TokenValidator checks bearer tokens
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*security.Claims, error)
}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the authenticated caller from ctx
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// Authenticate requires a valid bearer token
func Authenticate(tokens TokenValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.Error(w, r, logger, errors.NewUnauthorizedError("Authorization header required"))
				return
			}

			p, err := authenticate(r.Context(), tokens, token)
			if err != nil {
				response.Error(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// OptionalAuth attaches the caller when a bearer token is present. Requests
// without an Authorization header continue anonymously; a bad token is
// still rejected.
func OptionalAuth(tokens TokenValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			p, err := authenticate(r.Context(), tokens, token)
			if err != nil {
				response.Error(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func authenticate(ctx context.Context, tokens TokenValidator, token string) (*Principal, error) {
	claims, err := tokens.Validate(ctx, token)
	if err != nil {
		return nil, errors.NewUnauthorizedError("Invalid or expired token").WithCause(err)
	}

	return &Principal{
		UserID:    claims.UserUUID(),
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAtTime(),
	}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, security.TokenTypeBearer) || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
