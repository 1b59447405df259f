package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DishCatalog implements outbound.DishCatalog using GORM
type DishCatalog struct {
	db *gorm.DB
}

// NewDishCatalog creates a new dish catalog
func NewDishCatalog(db *gorm.DB) *DishCatalog {
	return &DishCatalog{db: db}
}

// FetchIngredientNames returns the owner's ingredient names, oldest first
func (c *DishCatalog) FetchIngredientNames(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	var names []string
	result := c.db.WithContext(ctx).Model(&IngredientModel{}).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").
		Pluck("name", &names)
	if result.Error != nil {
		return nil, result.Error
	}
	return names, nil
}

// CreateDish stores the dish row and its ingredient links in one transaction
func (c *DishCatalog) CreateDish(ctx context.Context, d *dish.Dish) error {
	model := DishToModel(d)

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}

		links := make([]DishIngredientModel, 0, len(d.Ingredients()))
		for _, id := range d.IngredientIDs() {
			links = append(links, DishIngredientModel{DishID: model.ID, IngredientID: id})
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
}

// FindDish finds a dish with its ingredients
func (c *DishCatalog) FindDish(ctx context.Context, id uuid.UUID) (*dish.Dish, error) {
	var model DishModel

	result := c.withIngredients(c.db.WithContext(ctx)).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, dish.ErrDishNotFound
		}
		return nil, result.Error
	}

	return ModelToDish(&model), nil
}

// DeleteDish removes a dish, its likes and its ingredient links
func (c *DishCatalog) DeleteDish(ctx context.Context, id uuid.UUID) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dish_id = ?", id).Delete(&LikeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dish_id = ?", id).Delete(&DishIngredientModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&DishModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return dish.ErrDishNotFound
		}
		return nil
	})
}

// CreateLike inserts a like inside a nested transaction, so a unique
// violation rolls back to a savepoint and leaves an outer transaction usable
func (c *DishCatalog) CreateLike(ctx context.Context, like *dish.Like) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(LikeToModel(like)).Error
	})
	if isUniqueViolation(err) {
		return dish.ErrLikeAlreadyExists
	}
	return err
}

// DeleteLike removes the like of dishID by userID, reporting whether one existed
func (c *DishCatalog) DeleteLike(ctx context.Context, dishID, userID uuid.UUID) (bool, error) {
	result := c.db.WithContext(ctx).
		Where("dish_id = ? AND user_id = ?", dishID, userID).
		Delete(&LikeModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// LikeExists reports whether userID likes dishID
func (c *DishCatalog) LikeExists(ctx context.Context, dishID, userID uuid.UUID) (bool, error) {
	var count int64
	result := c.db.WithContext(ctx).Model(&LikeModel{}).
		Where("dish_id = ? AND user_id = ?", dishID, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// LikedDishIDs returns the subset of dishIDs that userID likes
func (c *DishCatalog) LikedDishIDs(ctx context.Context, userID uuid.UUID, dishIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(dishIDs) == 0 {
		return []uuid.UUID{}, nil
	}

	var liked []uuid.UUID
	result := c.db.WithContext(ctx).Model(&LikeModel{}).
		Where("user_id = ? AND dish_id IN ?", userID, dishIDs).
		Pluck("dish_id", &liked)
	if result.Error != nil {
		return nil, result.Error
	}
	return liked, nil
}

// RecomputeAndStoreLikesCount overwrites likes_count with a fresh count of
// the dish's likes. Only the likes_count column is written.
func (c *DishCatalog) RecomputeAndStoreLikesCount(ctx context.Context, dishID uuid.UUID) (int, error) {
	db := c.db.WithContext(ctx)

	var count int64
	if err := db.Model(&LikeModel{}).Where("dish_id = ?", dishID).Count(&count).Error; err != nil {
		return 0, err
	}

	result := db.Model(&DishModel{}).
		Where("id = ?", dishID).
		UpdateColumn("likes_count", count)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, dish.ErrDishNotFound
	}

	return int(count), nil
}

// ListByOwner returns the owner's dishes, newest first
func (c *DishCatalog) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*dish.Dish, int, error) {
	return c.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", ownerID)
	}, "created_at DESC", offset, limit)
}

// ListRanking returns dishes by like count, then newest first
func (c *DishCatalog) ListRanking(ctx context.Context, offset, limit int) ([]*dish.Dish, int, error) {
	return c.list(ctx, nil, "likes_count DESC, created_at DESC, id DESC", offset, limit)
}

// ListRecent returns all dishes, newest first
func (c *DishCatalog) ListRecent(ctx context.Context, offset, limit int) ([]*dish.Dish, int, error) {
	return c.list(ctx, nil, "created_at DESC, id DESC", offset, limit)
}

// AllDishIDs returns every dish id
func (c *DishCatalog) AllDishIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	result := c.db.WithContext(ctx).Model(&DishModel{}).Order("created_at ASC").Pluck("id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

// InDishTx locks the dish row and runs fn with a catalog bound to the
// transaction. SQLite has no row locks; its single writer gives the same
// serialization.
func (c *DishCatalog) InDishTx(ctx context.Context, dishID uuid.UUID, fn func(ctx context.Context, tx outbound.DishCatalog, d *dish.Dish) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked DishModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, "id = ?", dishID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dish.ErrDishNotFound
			}
			return err
		}

		txCatalog := &DishCatalog{db: tx}
		d, err := txCatalog.FindDish(ctx, dishID)
		if err != nil {
			return err
		}

		return fn(ctx, txCatalog, d)
	})
}

func (c *DishCatalog) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB, order string, offset, limit int) ([]*dish.Dish, int, error) {
	base := c.db.WithContext(ctx).Model(&DishModel{})
	if scope != nil {
		base = scope(base)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []DishModel
	result := c.withIngredients(base.Session(&gorm.Session{})).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return modelsToDishes(models), int(total), nil
}

func (c *DishCatalog) withIngredients(db *gorm.DB) *gorm.DB {
	return db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("ingredients.created_at ASC")
	})
}
