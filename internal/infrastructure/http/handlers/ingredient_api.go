package handlers

import (
	"net/http"

	"github.com/alchemorsel/dishgen/internal/infrastructure/http/response"
	"github.com/alchemorsel/dishgen/internal/infrastructure/security"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"go.uber.org/zap"
)

// IngredientAPIHandlers handles the caller's ingredient list
type IngredientAPIHandlers struct {
	ingredients inbound.IngredientService
	validator   *security.Validator
	logger      *zap.Logger
}

// NewIngredientAPIHandlers creates ingredient handlers
func NewIngredientAPIHandlers(
	ingredients inbound.IngredientService,
	validator *security.Validator,
	logger *zap.Logger,
) *IngredientAPIHandlers {
	return &IngredientAPIHandlers{
		ingredients: ingredients,
		validator:   validator,
		logger:      logger,
	}
}

// IngredientRequest is the body of create and rename requests
type IngredientRequest struct {
	Name string `json:"name" validate:"required"`
}

// List handles GET /api/v1/ingredients
func (h *IngredientAPIHandlers) List(w http.ResponseWriter, r *http.Request) {
	p, err := currentUser(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	params, err := pagination(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	list, err := h.ingredients.List(r.Context(), p.UserID, params)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, list, "")
}

// Create handles POST /api/v1/ingredients
func (h *IngredientAPIHandlers) Create(w http.ResponseWriter, r *http.Request) {
	p, err := currentUser(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	var req IngredientRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	item, err := h.ingredients.Create(r.Context(), inbound.CreateIngredientCommand{
		UserID: p.UserID,
		Name:   req.Name,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, item, "Ingredient created")
}

// Get handles GET /api/v1/ingredients/{id}
func (h *IngredientAPIHandlers) Get(w http.ResponseWriter, r *http.Request) {
	p, err := currentUser(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	item, err := h.ingredients.Get(r.Context(), id, p.UserID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, item, "")
}

// Rename handles PUT /api/v1/ingredients/{id}
func (h *IngredientAPIHandlers) Rename(w http.ResponseWriter, r *http.Request) {
	p, err := currentUser(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	var req IngredientRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	item, err := h.ingredients.Rename(r.Context(), inbound.RenameIngredientCommand{
		IngredientID: id,
		UserID:       p.UserID,
		Name:         req.Name,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, item, "Ingredient updated")
}

// Delete handles DELETE /api/v1/ingredients/{id}
func (h *IngredientAPIHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := currentUser(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	if err := h.ingredients.Delete(r.Context(), id, p.UserID); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, nil, "Ingredient deleted")
}
