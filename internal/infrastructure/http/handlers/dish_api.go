package handlers

import (
	"context"
	"net/http"

	"github.com/alchemorsel/dishgen/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/dishgen/internal/infrastructure/http/response"
	"github.com/alchemorsel/dishgen/internal/infrastructure/security"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DishAPIHandlers handles generation, saved dishes and likes
type DishAPIHandlers struct {
	dishes    inbound.DishService
	validator *security.Validator
	logger    *zap.Logger
}

// NewDishAPIHandlers creates dish handlers
func NewDishAPIHandlers(
	dishes inbound.DishService,
	validator *security.Validator,
	logger *zap.Logger,
) *DishAPIHandlers {
	return &DishAPIHandlers{
		dishes:    dishes,
		validator: validator,
		logger:    logger,
	}
}

// SaveDishRequest is the body of POST /api/v1/dishes. Blank names and
// empty ingredient lists are reported by the dish service.
type SaveDishRequest struct {
	Name          string      `json:"name" validate:"omitempty,max=200"`
	IngredientIDs []uuid.UUID `json:"ingredient_ids" validate:"omitempty,max=50"`
}

// Generate handles POST /api/v1/dishes/generate
func (h *DishAPIHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	p, err := currentUser(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	result, err := h.dishes.Generate(r.Context(), p.UserID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, result, "")
}

// Save handles POST /api/v1/dishes
func (h *DishAPIHandlers) Save(w http.ResponseWriter, r *http.Request) {
	p, err := currentUser(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	var req SaveDishRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	saved, err := h.dishes.Save(r.Context(), inbound.SaveDishCommand{
		UserID:        p.UserID,
		Name:          req.Name,
		IngredientIDs: req.IngredientIDs,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, saved, "Dish saved")
}

// ListMine handles GET /api/v1/dishes
func (h *DishAPIHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.dishes.ListMine(r.Context(), p.UserID, params)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, list, "")
}

// Delete handles DELETE /api/v1/dishes/{id}
func (h *DishAPIHandlers) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.dishes.Delete(r.Context(), id, p.UserID); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, nil, "Dish deleted")
}

// ToggleLike handles POST /api/v1/dishes/{id}/like
func (h *DishAPIHandlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.dishes.ToggleLike(r.Context(), id, p.UserID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, result, "")
}

// Ranking handles GET /api/v1/dishes/ranking
func (h *DishAPIHandlers) Ranking(w http.ResponseWriter, r *http.Request) {
	h.listPublic(w, r, h.dishes.Ranking)
}

// Recent handles GET /api/v1/dishes/recent
func (h *DishAPIHandlers) Recent(w http.ResponseWriter, r *http.Request) {
	h.listPublic(w, r, h.dishes.Recent)
}

type publicLister func(ctx context.Context, viewerID *uuid.UUID, params inbound.PaginationParams) (*inbound.DishList, error)

func (h *DishAPIHandlers) listPublic(w http.ResponseWriter, r *http.Request, list publicLister) {
	params, err := pagination(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	var viewerID *uuid.UUID
	if p, ok := middleware.PrincipalFrom(r.Context()); ok {
		viewerID = &p.UserID
	}

	result, err := list(r.Context(), viewerID, params)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, result, "")
}
