package handlers

import (
	"net/http"

	"github.com/alchemorsel/dishgen/internal/infrastructure/http/response"
	"github.com/alchemorsel/dishgen/internal/infrastructure/security"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"go.uber.org/zap"
)

// AuthAPIHandlers handles account endpoints
type AuthAPIHandlers struct {
	userService inbound.UserService
	validator   *security.Validator
	logger      *zap.Logger
}

// NewAuthAPIHandlers creates new authentication API handlers
func NewAuthAPIHandlers(
	userService inbound.UserService,
	validator *security.Validator,
	logger *zap.Logger,
) *AuthAPIHandlers {
	return &AuthAPIHandlers{
		userService: userService,
		validator:   validator,
		logger:      logger,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthAPIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req inbound.RegisterCommand
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, user, "User registered successfully")
}

// Login handles POST /api/v1/auth/login
func (h *AuthAPIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginCommand
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	result, err := h.userService.Login(r.Context(), req)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, result, "Login successful")
}

// Logout handles POST /api/v1/auth/logout. The presented token is revoked
// until it would have expired.
func (h *AuthAPIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	p, err := currentUser(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	if err := h.userService.Logout(r.Context(), p.TokenID, p.ExpiresAt); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, nil, "Logged out successfully")
}

// Me handles GET /api/v1/auth/me
func (h *AuthAPIHandlers) Me(w http.ResponseWriter, r *http.Request) {
	p, err := currentUser(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	user, err := h.userService.GetProfile(r.Context(), p.UserID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, user, "")
}
