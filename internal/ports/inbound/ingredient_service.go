package inbound

import (
	"context"

	"github.com/google/uuid"
)

// IngredientService defines the use cases for a user's ingredient list
type IngredientService interface {
	Create(ctx context.Context, cmd CreateIngredientCommand) (*IngredientDTO, error)
	Rename(ctx context.Context, cmd RenameIngredientCommand) (*IngredientDTO, error)
	Delete(ctx context.Context, ingredientID, userID uuid.UUID) error
	Get(ctx context.Context, ingredientID, userID uuid.UUID) (*IngredientDTO, error)
	List(ctx context.Context, userID uuid.UUID, params PaginationParams) (*IngredientList, error)
}

// CreateIngredientCommand contains data for registering an ingredient
type CreateIngredientCommand struct {
	UserID uuid.UUID `validate:"required"`
	Name   string    `validate:"required,max=100"`
}

// RenameIngredientCommand contains data for renaming an ingredient
type RenameIngredientCommand struct {
	IngredientID uuid.UUID `validate:"required"`
	UserID       uuid.UUID `validate:"required"`
	Name         string    `validate:"required,max=100"`
}

// IngredientDTO for ingredient data
type IngredientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt string    `json:"created_at,omitempty"`
	UpdatedAt string    `json:"updated_at,omitempty"`
}

// IngredientList for paginated results
type IngredientList struct {
	Ingredients []IngredientDTO `json:"ingredients"`
	Total       int             `json:"total"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	TotalPages  int             `json:"total_pages"`
}
