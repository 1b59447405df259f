// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/google/uuid"
)

// DishService defines the use cases for dish name generation and the
// saved dish collection
type DishService interface {
	// Generation
	Generate(ctx context.Context, userID uuid.UUID) (*GenerateResult, error)
	GenerateDemo(ctx context.Context, cmd DemoGenerateCommand) (*GenerateResult, error)
	ComposeDemo(ctx context.Context, cmd ComposeDemoCommand) (*ComposeResult, error)

	// Commands
	Save(ctx context.Context, cmd SaveDishCommand) (*DishDTO, error)
	Delete(ctx context.Context, dishID, userID uuid.UUID) error
	ToggleLike(ctx context.Context, dishID, userID uuid.UUID) (*ToggleLikeResult, error)

	// Queries
	ListMine(ctx context.Context, userID uuid.UUID, params PaginationParams) (*DishList, error)
	Ranking(ctx context.Context, viewerID *uuid.UUID, params PaginationParams) (*DishList, error)
	Recent(ctx context.Context, viewerID *uuid.UUID, params PaginationParams) (*DishList, error)
}

// LikeProjection keeps the denormalized like count of a dish in step with
// its likes
type LikeProjection interface {
	Rebuild(ctx context.Context, dishID uuid.UUID) (int, error)
	RebuildAll(ctx context.Context) (int, error)
}

// SaveDishCommand contains data for keeping a generated name
type SaveDishCommand struct {
	UserID        uuid.UUID   `validate:"required"`
	Name          string      `validate:"required"`
	IngredientIDs []uuid.UUID `validate:"required,min=1"`
}

// DemoGenerateCommand is the anonymous batch generation input. Input is a
// comma-separated list; Ingredients, when non-empty, takes precedence.
type DemoGenerateCommand struct {
	Input       string
	Ingredients []string
}

// ComposeDemoCommand requests a single name for the given ingredients
type ComposeDemoCommand struct {
	Ingredients []string `json:"ingredients" validate:"required,min=1,dive,max=100"`
}

// PaginationParams for paginated queries. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the page
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// GenerateResult holds a batch of candidate dish names
type GenerateResult struct {
	DishNames       []string        `json:"dish_names"`
	Ingredients     []IngredientDTO `json:"ingredients,omitempty"`
	IngredientNames []string        `json:"ingredient_names,omitempty"`
}

// ComposeResult is a single generated name with the ingredients it used
type ComposeResult struct {
	DishName        string   `json:"dish_name"`
	IngredientsUsed []string `json:"ingredients_used"`
}

// ToggleLikeResult reports the outcome of a like toggle
type ToggleLikeResult struct {
	DishID     uuid.UUID       `json:"dish_id"`
	Action     dish.LikeAction `json:"action"`
	LikesCount int             `json:"likes_count"`
}

// DishDTO is the data transfer object for saved dishes
type DishDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Ingredients []IngredientDTO `json:"ingredients"`
	LikesCount  int             `json:"likes_count"`
	LikedByMe   bool            `json:"liked_by_me"`
	CreatedAt   string          `json:"created_at"`
}

// DishList for paginated results
type DishList struct {
	Dishes       []DishDTO   `json:"dishes"`
	LikedDishIDs []uuid.UUID `json:"liked_dish_ids"`
	Total        int         `json:"total"`
	Page         int         `json:"page"`
	PageSize     int         `json:"page_size"`
	TotalPages   int         `json:"total_pages"`
}
