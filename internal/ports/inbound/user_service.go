package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserService defines account use cases
type UserService interface {
	Register(ctx context.Context, cmd RegisterCommand) (*UserDTO, error)
	Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
}

// RegisterCommand contains sign-up data
type RegisterCommand struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginCommand contains credentials
type LoginCommand struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the issued access token
type LoginResult struct {
	User        UserDTO   `json:"user"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserDTO is the public view of an account
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
