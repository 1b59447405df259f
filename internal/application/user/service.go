// Package user provides the application layer for user management
package user

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/dishgen/internal/domain/user"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService implements user management use cases
type UserService struct {
	userRepo   outbound.UserRepository
	tokens     outbound.TokenIssuer
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo outbound.UserRepository,
	tokens outbound.TokenIssuer,
	bcryptCost int,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger.Named("user-service"),
	}
}

var _ inbound.UserService = (*UserService)(nil)

// Register creates a new user account
func (s *UserService) Register(ctx context.Context, cmd inbound.RegisterCommand) (*inbound.UserDTO, error) {
	s.logger.Info("Registering new user", zap.String("username", cmd.Username))

	newUser, err := user.NewUser(cmd.Username, cmd.Password, s.bcryptCost)
	if err != nil {
		return nil, translate(err, cmd.Username)
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, translate(err, cmd.Username)
	}

	s.logger.Info("User registered successfully",
		zap.String("user_id", newUser.ID().String()),
		zap.String("username", newUser.Username()),
	)

	dto := entityToDTO(newUser)
	return &dto, nil
}

// Login authenticates a user and issues an access token
func (s *UserService) Login(ctx context.Context, cmd inbound.LoginCommand) (*inbound.LoginResult, error) {
	s.logger.Info("User login attempt", zap.String("username", cmd.Username))

	userEntity, err := s.userRepo.FindByUsername(ctx, cmd.Username)
	if err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			return nil, errors.NewInvalidCredentialsError()
		}
		return nil, errors.NewDatabaseError("find user", err)
	}

	if err := userEntity.CheckPassword(cmd.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("username", cmd.Username))
		return nil, errors.NewInvalidCredentialsError()
	}

	if !userEntity.IsActive() {
		return nil, errors.NewForbiddenError(user.ErrUserInactive.Error()).WithCause(user.ErrUserInactive)
	}

	userEntity.RecordLogin()
	if err := s.userRepo.UpdateLastLogin(ctx, userEntity.ID()); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	token, err := s.tokens.Issue(userEntity.ID(), userEntity.Username())
	if err != nil {
		return nil, errors.NewInternalError("failed to issue token").WithCause(err)
	}

	s.logger.Info("User logged in",
		zap.String("user_id", userEntity.ID().String()),
	)

	return &inbound.LoginResult{
		User:        entityToDTO(userEntity),
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// Logout revokes the presented token until it would have expired
func (s *UserService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if err := s.tokens.Revoke(ctx, tokenID, expiresAt); err != nil {
		return errors.NewInternalError("failed to revoke token").WithCause(err)
	}
	s.logger.Info("Token revoked", zap.String("token_id", tokenID))
	return nil
}

// GetProfile returns the user's public profile
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*inbound.UserDTO, error) {
	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			return nil, errors.NewUserNotFoundError(userID.String()).WithCause(err)
		}
		return nil, errors.NewDatabaseError("find user", err)
	}

	dto := entityToDTO(userEntity)
	return &dto, nil
}

func translate(err error, username string) error {
	switch {
	case stderrors.Is(err, user.ErrUsernameTaken):
		return errors.NewUsernameAlreadyExistsError(username).WithCause(err)
	case stderrors.Is(err, user.ErrUsernameRequired),
		stderrors.Is(err, user.ErrUsernameTooLong),
		stderrors.Is(err, user.ErrUsernameInvalid),
		stderrors.Is(err, user.ErrPasswordTooShort),
		stderrors.Is(err, user.ErrPasswordTooLong):
		return errors.NewValidationError(err.Error()).WithCause(err)
	default:
		return errors.NewDatabaseError("create user", err)
	}
}

func entityToDTO(u *user.User) inbound.UserDTO {
	return inbound.UserDTO{
		ID:          u.ID(),
		Username:    u.Username(),
		CreatedAt:   u.CreatedAt(),
		LastLoginAt: u.LastLoginAt(),
	}
}
