package dish

import "errors"

// Domain errors for dish operations

var (
	// Generation errors
	ErrInsufficientIngredients = errors.New("料理を生成するには少なくとも2つの材料が必要です。")
	ErrInvalidBatchSize        = errors.New("batch size must be at least 1")

	// Entity validation errors
	ErrNameRequired       = errors.New("料理名が指定されていません。")
	ErrNameTooLong        = errors.New("dish name must not exceed 200 characters")
	ErrNoValidIngredients = errors.New("有効な材料が選択されていません。")
	ErrNegativeLikesCount = errors.New("likes count must not be negative")

	// Lookup errors
	ErrDishNotFound = errors.New("dish not found")

	// Business rule violations
	ErrSelfLikeForbidden = errors.New("自分の料理にはいいねできません。")
	ErrLikeAlreadyExists = errors.New("like already exists")

	// Permission errors
	ErrNotDishOwner = errors.New("only the dish owner can perform this action")
)
