// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/ingredient"
	"github.com/alchemorsel/dishgen/internal/domain/user"
)

// UserToModel converts a domain user to a GORM model
func UserToModel(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID(),
		Username:     u.Username(),
		PasswordHash: u.PasswordHash(),
		IsActive:     u.IsActive(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
		LastLoginAt:  u.LastLoginAt(),
	}
}

// ModelToUser converts a GORM model to a domain user
func ModelToUser(m *UserModel) *user.User {
	return user.Reconstruct(m.ID, m.Username, m.PasswordHash, m.IsActive, m.CreatedAt, m.UpdatedAt, m.LastLoginAt)
}

// IngredientToModel converts a domain ingredient to a GORM model
func IngredientToModel(i *ingredient.Ingredient) *IngredientModel {
	return &IngredientModel{
		ID:        i.ID(),
		UserID:    i.OwnerID(),
		Name:      i.Name(),
		NameKey:   i.NameKey(),
		CreatedAt: i.CreatedAt(),
		UpdatedAt: i.UpdatedAt(),
	}
}

// ModelToIngredient converts a GORM model to a domain ingredient
func ModelToIngredient(m *IngredientModel) *ingredient.Ingredient {
	return ingredient.Reconstruct(m.ID, m.Name, m.UserID, m.CreatedAt, m.UpdatedAt)
}

// DishToModel converts a domain dish to a GORM model without its associations
func DishToModel(d *dish.Dish) *DishModel {
	return &DishModel{
		ID:         d.ID(),
		UserID:     d.OwnerID(),
		Name:       d.Name(),
		LikesCount: d.LikesCount(),
		CreatedAt:  d.CreatedAt(),
	}
}

// ModelToDish converts a GORM model with preloaded ingredients to a domain dish
func ModelToDish(m *DishModel) *dish.Dish {
	refs := make([]dish.IngredientRef, len(m.Ingredients))
	for i, ing := range m.Ingredients {
		refs[i] = dish.IngredientRef{ID: ing.ID, Name: ing.Name}
	}
	return dish.Reconstruct(m.ID, m.Name, m.UserID, refs, m.LikesCount, m.CreatedAt)
}

// LikeToModel converts a domain like to a GORM model
func LikeToModel(l *dish.Like) *LikeModel {
	return &LikeModel{
		ID:        l.ID,
		DishID:    l.DishID,
		UserID:    l.UserID,
		CreatedAt: l.CreatedAt,
	}
}

func modelsToDishes(models []DishModel) []*dish.Dish {
	dishes := make([]*dish.Dish, len(models))
	for i := range models {
		dishes[i] = ModelToDish(&models[i])
	}
	return dishes
}
