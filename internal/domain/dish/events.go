package dish

import (
	"time"

	"github.com/google/uuid"
)

// Event names, also used as routing keys by the event dispatcher
const (
	EventDishSaved   = "dish.saved"
	EventDishLiked   = "dish.liked"
	EventDishUnliked = "dish.unliked"
	EventDishDeleted = "dish.deleted"
)

// DishSavedEvent is raised when a user keeps a generated name
type DishSavedEvent struct {
	DishID  uuid.UUID
	OwnerID uuid.UUID
	Name    string
	SavedAt time.Time
}

func (e DishSavedEvent) EventName() string {
	return EventDishSaved
}

func (e DishSavedEvent) OccurredAt() time.Time {
	return e.SavedAt
}

// DishLikedEvent is raised after a like is committed
type DishLikedEvent struct {
	DishID     uuid.UUID
	UserID     uuid.UUID
	LikesCount int
	LikedAt    time.Time
}

func (e DishLikedEvent) EventName() string {
	return EventDishLiked
}

func (e DishLikedEvent) OccurredAt() time.Time {
	return e.LikedAt
}

// DishUnlikedEvent is raised after a like is removed
type DishUnlikedEvent struct {
	DishID     uuid.UUID
	UserID     uuid.UUID
	LikesCount int
	UnlikedAt  time.Time
}

func (e DishUnlikedEvent) EventName() string {
	return EventDishUnliked
}

func (e DishUnlikedEvent) OccurredAt() time.Time {
	return e.UnlikedAt
}

// DishDeletedEvent is raised when an owner deletes a dish
type DishDeletedEvent struct {
	DishID    uuid.UUID
	OwnerID   uuid.UUID
	DeletedAt time.Time
}

func (e DishDeletedEvent) EventName() string {
	return EventDishDeleted
}

func (e DishDeletedEvent) OccurredAt() time.Time {
	return e.DeletedAt
}
