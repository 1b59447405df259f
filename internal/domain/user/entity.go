// Package user defines the user domain entity
package user

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Domain errors for user operations
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username must not exceed 150 characters")
	ErrUsernameInvalid  = errors.New("username may only contain letters, digits and @/./+/-/_")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrUserInactive     = errors.New("account is deactivated")
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// User represents an account that owns ingredients and dishes
type User struct {
	id           uuid.UUID
	username     string
	passwordHash string
	isActive     bool
	createdAt    time.Time
	updatedAt    time.Time
	lastLoginAt  *time.Time
}

// NewUser creates a new user with a bcrypt-hashed password
func NewUser(username, password string, cost int) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	now := time.Now()
	return &User{
		id:           uuid.New(),
		username:     username,
		passwordHash: string(hashedPassword),
		isActive:     true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a user from stored state
func Reconstruct(id uuid.UUID, username, passwordHash string, isActive bool, createdAt, updatedAt time.Time, lastLoginAt *time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		isActive:     isActive,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		lastLoginAt:  lastLoginAt,
	}
}

// ID returns the user's ID
func (u *User) ID() uuid.UUID {
	return u.id
}

// Username returns the user's login name
func (u *User) Username() string {
	return u.username
}

// PasswordHash returns the stored bcrypt hash
func (u *User) PasswordHash() string {
	return u.passwordHash
}

// IsActive returns whether the user is active
func (u *User) IsActive() bool {
	return u.isActive
}

// CreatedAt returns when the user was created
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns when the user was last updated
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// LastLoginAt returns when the user last logged in
func (u *User) LastLoginAt() *time.Time {
	return u.lastLoginAt
}

// CheckPassword verifies if the provided password matches
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password))
}

// Deactivate deactivates the user
func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now()
}

// RecordLogin records a login timestamp
func (u *User) RecordLogin() {
	now := time.Now()
	u.lastLoginAt = &now
	u.updatedAt = now
}

func validateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}

	if len([]rune(username)) > 150 {
		return ErrUsernameTooLong
	}

	if !usernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}

	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	// bcrypt ignores input beyond 72 bytes
	if len(password) > 72 {
		return ErrPasswordTooLong
	}

	return nil
}
