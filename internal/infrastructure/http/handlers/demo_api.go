package handlers

import (
	"net/http"

	"github.com/alchemorsel/dishgen/internal/infrastructure/http/response"
	"github.com/alchemorsel/dishgen/internal/infrastructure/security"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"go.uber.org/zap"
)

// DemoAPIHandlers serves generation without an account
type DemoAPIHandlers struct {
	dishes    inbound.DishService
	validator *security.Validator
	logger    *zap.Logger
}

// NewDemoAPIHandlers creates demo handlers
func NewDemoAPIHandlers(
	dishes inbound.DishService,
	validator *security.Validator,
	logger *zap.Logger,
) *DemoAPIHandlers {
	return &DemoAPIHandlers{
		dishes:    dishes,
		validator: validator,
		logger:    logger,
	}
}

// DemoGenerateRequest accepts either a comma-separated string or a list
type DemoGenerateRequest struct {
	Input       string   `json:"input" validate:"max=2000"`
	Ingredients []string `json:"ingredients" validate:"omitempty,max=50,dive,max=100"`
}

// Generate handles POST /api/v1/demo/generate
func (h *DemoAPIHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req DemoGenerateRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	result, err := h.dishes.GenerateDemo(r.Context(), inbound.DemoGenerateCommand{
		Input:       req.Input,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, result, "")
}

// DishName handles POST /api/v1/demo/dish-name
func (h *DemoAPIHandlers) DishName(w http.ResponseWriter, r *http.Request) {
	var req inbound.ComposeDemoCommand
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	result, err := h.dishes.ComposeDemo(r.Context(), req)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, result, "")
}
