package dish

import (
	"time"

	"github.com/google/uuid"
)

// LikeAction is the outcome of toggling a like
type LikeAction string

const (
	LikeActionLiked   LikeAction = "liked"
	LikeActionUnliked LikeAction = "unliked"
)

// Like is one user's endorsement of another user's dish.
// At most one exists per (dish, user).
type Like struct {
	ID        uuid.UUID
	DishID    uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

// NewLike creates a like of dishID by userID
func NewLike(dishID, userID uuid.UUID) *Like {
	return &Like{
		ID:        uuid.New(),
		DishID:    dishID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}
