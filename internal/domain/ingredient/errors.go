package ingredient

import "errors"

// Domain errors for ingredient operations

var (
	ErrNameRequired = errors.New("ingredient name is required")
	ErrNameTooLong  = errors.New("ingredient name must not exceed 100 characters")

	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrDuplicateName      = errors.New("ingredient name already registered")
	ErrNotIngredientOwner = errors.New("only the ingredient owner can perform this action")
)
