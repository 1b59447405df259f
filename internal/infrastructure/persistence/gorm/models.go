// Package gorm provides GORM model definitions and repository implementations
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// IngredientModel represents the GORM model for ingredients.
// NameKey carries the case-folded name so uniqueness per owner is enforced
// by the database.
type IngredientModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_ingredients_user_name_key,priority:1"`
	Name      string    `gorm:"type:varchar(100);not null"`
	NameKey   string    `gorm:"type:text;not null;uniqueIndex:idx_ingredients_user_name_key,priority:2"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// DishModel represents the GORM model for saved dishes
type DishModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID `gorm:"type:char(36);not null;index"`
	Name       string    `gorm:"type:varchar(200);not null"`
	LikesCount int       `gorm:"column:likes_count;not null;default:0;index;check:likes_count >= 0"`
	CreatedAt  time.Time `gorm:"index"`

	// Relationships
	Ingredients []IngredientModel `gorm:"many2many:dish_ingredients;joinForeignKey:DishID;joinReferences:IngredientID"`
}

// DishIngredientModel is the join row between a dish and an ingredient
type DishIngredientModel struct {
	DishID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	IngredientID uuid.UUID `gorm:"type:char(36);primaryKey;index"`
}

// LikeModel represents one user's like of a dish
type LikeModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	DishID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_likes_dish_user,priority:1"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_likes_dish_user,priority:2;index"`
	CreatedAt time.Time
}

// BeforeCreate hook for UserModel
func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for IngredientModel
func (i *IngredientModel) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for DishModel
func (d *DishModel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for LikeModel
func (l *LikeModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (UserModel) TableName() string {
	return "users"
}

func (IngredientModel) TableName() string {
	return "ingredients"
}

func (DishModel) TableName() string {
	return "dishes"
}

func (DishIngredientModel) TableName() string {
	return "dish_ingredients"
}

func (LikeModel) TableName() string {
	return "likes"
}

// AutoMigrate creates or updates the schema for every model
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&DishModel{}, "Ingredients", &DishIngredientModel{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&UserModel{},
		&IngredientModel{},
		&DishModel{},
		&DishIngredientModel{},
		&LikeModel{},
	)
}
