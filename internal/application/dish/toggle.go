package dish

import (
	"context"
	stderrors "errors"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/shared"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ToggleLike likes the dish for userID, or removes the like if one exists.
// The dish row stays locked from the existence check until the fresh
// count is written, so concurrent toggles on one dish serialize and every
// caller sees the count that includes its own change.
func (s *Service) ToggleLike(ctx context.Context, dishID, userID uuid.UUID) (*inbound.ToggleLikeResult, error) {
	ctx, span := s.tracer.Start(ctx, "dish.ToggleLike", trace.WithAttributes(
		attribute.String("dish_id", dishID.String()),
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	var (
		result *inbound.ToggleLikeResult
		events []shared.DomainEvent
	)

	err := s.catalog.InDishTx(ctx, dishID, func(ctx context.Context, tx outbound.DishCatalog, d *dish.Dish) error {
		if err := d.CanBeLikedBy(userID); err != nil {
			return err
		}

		action, err := toggle(ctx, tx, dishID, userID)
		if err != nil {
			return err
		}

		var count int
		if action == dish.LikeActionLiked {
			count, err = s.projection.OnLikeCreated(ctx, tx, dishID)
		} else {
			count, err = s.projection.OnLikeDeleted(ctx, tx, dishID)
		}
		if err != nil {
			return err
		}

		if err := d.ApplyLikeToggle(userID, action, count); err != nil {
			return err
		}

		events = d.Events()
		result = &inbound.ToggleLikeResult{
			DishID:     dishID,
			Action:     action,
			LikesCount: count,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, s.translateFor(err, dishID, "toggle like")
	}

	// Committed; listeners only ever see durable state
	s.publish(ctx, events)
	s.invalidateRanking(ctx)

	s.logger.Info("Like toggled",
		zap.String("dish_id", dishID.String()),
		zap.String("user_id", userID.String()),
		zap.String("action", string(result.Action)),
		zap.Int("likes_count", result.LikesCount),
	)

	return result, nil
}

// toggle flips the (dish, user) like inside tx. A concurrent insert that
// wins the unique constraint counts as liked.
func toggle(ctx context.Context, tx outbound.DishCatalog, dishID, userID uuid.UUID) (dish.LikeAction, error) {
	exists, err := tx.LikeExists(ctx, dishID, userID)
	if err != nil {
		return "", err
	}

	if exists {
		if _, err := tx.DeleteLike(ctx, dishID, userID); err != nil {
			return "", err
		}
		return dish.LikeActionUnliked, nil
	}

	err = tx.CreateLike(ctx, dish.NewLike(dishID, userID))
	if err != nil && !stderrors.Is(err, dish.ErrLikeAlreadyExists) {
		return "", err
	}
	return dish.LikeActionLiked, nil
}
