// Package dish contains the dish domain: name generation, saved dishes
// and the likes other users give them.
package dish

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alchemorsel/dishgen/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxNameLength is the longest dish name that can be saved, in characters
const MaxNameLength = 200

// IngredientRef is a reference to an ingredient used in a saved dish
type IngredientRef struct {
	ID   uuid.UUID
	Name string
}

// Dish is a generated name a user chose to keep, together with the
// ingredients it was generated from.
type Dish struct {
	shared.AggregateRoot

	id          uuid.UUID
	name        string
	ownerID     uuid.UUID
	ingredients []IngredientRef

	// likesCount mirrors the number of Like rows for this dish.
	// The like relation is authoritative; this is only ever overwritten
	// with a fresh count, never incremented.
	likesCount int

	createdAt time.Time
}

// NewDish creates a dish owned by ownerID
func NewDish(name string, ownerID uuid.UUID, ingredients []IngredientRef) (*Dish, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if len(ingredients) == 0 {
		return nil, ErrNoValidIngredients
	}

	now := time.Now()
	d := &Dish{
		id:          uuid.New(),
		name:        name,
		ownerID:     ownerID,
		ingredients: append([]IngredientRef(nil), ingredients...),
		createdAt:   now,
	}

	d.AddEvent(DishSavedEvent{
		DishID:  d.id,
		OwnerID: ownerID,
		Name:    name,
		SavedAt: now,
	})

	return d, nil
}

// Reconstruct rebuilds a dish from stored state without validation or events
func Reconstruct(id uuid.UUID, name string, ownerID uuid.UUID, ingredients []IngredientRef, likesCount int, createdAt time.Time) *Dish {
	return &Dish{
		id:          id,
		name:        name,
		ownerID:     ownerID,
		ingredients: ingredients,
		likesCount:  likesCount,
		createdAt:   createdAt,
	}
}

// ID returns the dish's unique identifier
func (d *Dish) ID() uuid.UUID {
	return d.id
}

// Name returns the dish name
func (d *Dish) Name() string {
	return d.name
}

// OwnerID returns the ID of the user who saved the dish
func (d *Dish) OwnerID() uuid.UUID {
	return d.ownerID
}

// Ingredients returns the ingredients the dish was generated from
func (d *Dish) Ingredients() []IngredientRef {
	return d.ingredients
}

// IngredientIDs returns the IDs of the dish's ingredients
func (d *Dish) IngredientIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(d.ingredients))
	for i, ing := range d.ingredients {
		ids[i] = ing.ID
	}
	return ids
}

// LikesCount returns the denormalized like count
func (d *Dish) LikesCount() int {
	return d.likesCount
}

// CreatedAt returns when the dish was saved
func (d *Dish) CreatedAt() time.Time {
	return d.createdAt
}

// IsOwnedBy reports whether userID owns the dish
func (d *Dish) IsOwnedBy(userID uuid.UUID) bool {
	return d.ownerID == userID
}

// CanBeLikedBy returns ErrSelfLikeForbidden when userID owns the dish
func (d *Dish) CanBeLikedBy(userID uuid.UUID) error {
	if d.IsOwnedBy(userID) {
		return ErrSelfLikeForbidden
	}
	return nil
}

// ApplyLikeToggle records the outcome of a like toggle. count must be the
// freshly recomputed number of likes after the change.
func (d *Dish) ApplyLikeToggle(userID uuid.UUID, action LikeAction, count int) error {
	if count < 0 {
		return ErrNegativeLikesCount
	}
	d.likesCount = count

	now := time.Now()
	switch action {
	case LikeActionLiked:
		d.AddEvent(DishLikedEvent{DishID: d.id, UserID: userID, LikesCount: count, LikedAt: now})
	case LikeActionUnliked:
		d.AddEvent(DishUnlikedEvent{DishID: d.id, UserID: userID, LikesCount: count, UnlikedAt: now})
	}
	return nil
}

// MarkDeleted raises the deletion event; the caller removes the dish from storage
func (d *Dish) MarkDeleted(by uuid.UUID) error {
	if !d.IsOwnedBy(by) {
		return ErrNotDishOwner
	}
	d.AddEvent(DishDeletedEvent{DishID: d.id, OwnerID: d.ownerID, DeletedAt: time.Now()})
	return nil
}

func validateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
