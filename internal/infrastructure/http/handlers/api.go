// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/dishgen/internal/infrastructure/http/response"
	"github.com/alchemorsel/dishgen/internal/infrastructure/security"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// APIHandlers handles the endpoints that are not tied to one resource
type APIHandlers struct {
	version string
	logger  *zap.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(version string, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		version: version,
		logger:  logger,
	}
}

// HealthCheck handles GET /api/v1/health
func (h *APIHandlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"version":   h.version,
	}, "Service is healthy")
}

// NotFound answers unknown routes with the error envelope
func (h *APIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	response.Error(w, r, h.logger, errors.NewNotFoundError("Route"))
}

// decodeJSON reads a JSON body into dst and validates it
func decodeJSON(w http.ResponseWriter, r *http.Request, v *security.Validator, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewBadRequestError("Invalid JSON payload").WithCause(err)
	}

	return v.Struct(dst)
}

// pathUUID parses a uuid route parameter
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errors.NewValidationError(name + " must be a valid UUID").WithCause(err)
	}
	return id, nil
}

// pagination reads the 1-based page query parameter. Page size comes from
// configuration, not from the client.
func pagination(r *http.Request) (inbound.PaginationParams, error) {
	params := inbound.PaginationParams{Page: 1}

	raw := r.URL.Query().Get("page")
	if raw == "" {
		return params, nil
	}

	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return params, errors.NewValidationError("page must be a positive integer")
	}
	params.Page = page
	return params, nil
}

// currentUser returns the authenticated caller. Routes behind
// middleware.Authenticate always have one.
func currentUser(r *http.Request) (*middleware.Principal, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return nil, errors.NewUnauthorizedError("Authentication required")
	}
	return p, nil
}
