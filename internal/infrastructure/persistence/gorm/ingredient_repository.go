package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/dishgen/internal/domain/ingredient"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredientRepository implements the ingredient repository interface using GORM
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// Create creates a new ingredient
func (r *IngredientRepository) Create(ctx context.Context, i *ingredient.Ingredient) error {
	result := r.db.WithContext(ctx).Create(IngredientToModel(i))
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ingredient.ErrDuplicateName
		}
		return result.Error
	}
	return nil
}

// Update writes the ingredient's name
func (r *IngredientRepository) Update(ctx context.Context, i *ingredient.Ingredient) error {
	result := r.db.WithContext(ctx).Model(&IngredientModel{}).
		Where("id = ?", i.ID()).
		Updates(map[string]interface{}{
			"name":       i.Name(),
			"name_key":   i.NameKey(),
			"updated_at": i.UpdatedAt(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ingredient.ErrDuplicateName
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ingredient.ErrIngredientNotFound
	}
	return nil
}

// Delete removes an ingredient and unlinks it from saved dishes
func (r *IngredientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&DishIngredientModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&IngredientModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ingredient.ErrIngredientNotFound
		}
		return nil
	})
}

// FindByID finds an ingredient by ID
func (r *IngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	var model IngredientModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ingredient.ErrIngredientNotFound
		}
		return nil, result.Error
	}

	return ModelToIngredient(&model), nil
}

// FindByOwner returns a page of the owner's ingredients, newest first
func (r *IngredientRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*ingredient.Ingredient, int, error) {
	var total int64
	countResult := r.db.WithContext(ctx).Model(&IngredientModel{}).
		Where("user_id = ?", ownerID).
		Count(&total)
	if countResult.Error != nil {
		return nil, 0, countResult.Error
	}

	var models []IngredientModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return modelsToIngredients(models), int(total), nil
}

// FindByIDsForOwner returns the ingredients among ids that ownerID owns.
// Foreign and unknown ids are silently dropped.
func (r *IngredientRepository) FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*ingredient.Ingredient, error) {
	if len(ids) == 0 {
		return []*ingredient.Ingredient{}, nil
	}

	var models []IngredientModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", ownerID, ids).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return modelsToIngredients(models), nil
}

// ExistsByNameKey reports whether the owner has an ingredient with nameKey,
// ignoring excludeID when set
func (r *IngredientRepository) ExistsByNameKey(ctx context.Context, ownerID uuid.UUID, nameKey string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&IngredientModel{}).
		Where("user_id = ? AND name_key = ?", ownerID, nameKey)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func modelsToIngredients(models []IngredientModel) []*ingredient.Ingredient {
	items := make([]*ingredient.Ingredient, len(models))
	for i := range models {
		items[i] = ModelToIngredient(&models[i])
	}
	return items
}
