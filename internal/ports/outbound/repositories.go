// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/ingredient"
	"github.com/alchemorsel/dishgen/internal/domain/user"
	"github.com/google/uuid"
)

// DishCatalog is the persistent store of saved dishes and their likes
type DishCatalog interface {
	// FetchIngredientNames returns the names of every ingredient ownerID registered
	FetchIngredientNames(ctx context.Context, ownerID uuid.UUID) ([]string, error)

	// CreateDish stores the dish and its ingredient associations atomically
	CreateDish(ctx context.Context, d *dish.Dish) error
	FindDish(ctx context.Context, id uuid.UUID) (*dish.Dish, error)
	// DeleteDish removes the dish together with its likes and associations
	DeleteDish(ctx context.Context, id uuid.UUID) error

	// CreateLike fails with dish.ErrLikeAlreadyExists when (dish, user) is taken
	CreateLike(ctx context.Context, like *dish.Like) error
	DeleteLike(ctx context.Context, dishID, userID uuid.UUID) (bool, error)
	LikeExists(ctx context.Context, dishID, userID uuid.UUID) (bool, error)
	LikedDishIDs(ctx context.Context, userID uuid.UUID, dishIDs []uuid.UUID) ([]uuid.UUID, error)

	// RecomputeAndStoreLikesCount counts the dish's likes and writes only
	// the likes_count column
	RecomputeAndStoreLikesCount(ctx context.Context, dishID uuid.UUID) (int, error)

	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*dish.Dish, int, error)
	ListRanking(ctx context.Context, offset, limit int) ([]*dish.Dish, int, error)
	ListRecent(ctx context.Context, offset, limit int) ([]*dish.Dish, int, error)
	AllDishIDs(ctx context.Context) ([]uuid.UUID, error)

	// InDishTx runs fn in a transaction holding a row lock on the dish.
	// The catalog passed to fn is bound to that transaction.
	InDishTx(ctx context.Context, dishID uuid.UUID, fn func(ctx context.Context, tx DishCatalog, d *dish.Dish) error) error
}

// IngredientRepository defines the interface for ingredient persistence
type IngredientRepository interface {
	// Create fails with ingredient.ErrDuplicateName when the owner already
	// has an ingredient with the same name key
	Create(ctx context.Context, i *ingredient.Ingredient) error
	Update(ctx context.Context, i *ingredient.Ingredient) error
	// Delete removes the ingredient and its dish associations
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*ingredient.Ingredient, int, error)
	FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*ingredient.Ingredient, error)
	ExistsByNameKey(ctx context.Context, ownerID uuid.UUID, nameKey string, excludeID *uuid.UUID) (bool, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	Update(ctx context.Context, user *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Counter operations
	Increment(ctx context.Context, key string) (int64, error)
}

// IssuedToken is a signed access token and the facts needed to revoke it
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// TokenIssuer signs and revokes access tokens
type TokenIssuer interface {
	Issue(userID uuid.UUID, username string) (*IssuedToken, error)
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")
