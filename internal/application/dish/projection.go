package dish

import (
	"context"
	stderrors "errors"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Projection maintains dishes.likes_count as a cache of COUNT(likes).
// Every update is a fresh count, never an increment, so repeated or
// reordered notifications converge on the same value.
type Projection struct {
	catalog outbound.DishCatalog
	logger  *zap.Logger
}

// NewProjection creates a like count projection
func NewProjection(catalog outbound.DishCatalog, logger *zap.Logger) *Projection {
	return &Projection{
		catalog: catalog,
		logger:  logger.Named("like-projection"),
	}
}

var _ inbound.LikeProjection = (*Projection)(nil)

// OnLikeCreated refreshes the count after a like row was inserted.
// catalog must be bound to the transaction that inserted it.
func (p *Projection) OnLikeCreated(ctx context.Context, catalog outbound.DishCatalog, dishID uuid.UUID) (int, error) {
	return catalog.RecomputeAndStoreLikesCount(ctx, dishID)
}

// OnLikeDeleted refreshes the count after a like row was removed
func (p *Projection) OnLikeDeleted(ctx context.Context, catalog outbound.DishCatalog, dishID uuid.UUID) (int, error) {
	return catalog.RecomputeAndStoreLikesCount(ctx, dishID)
}

// Rebuild recomputes one dish's count under its row lock
func (p *Projection) Rebuild(ctx context.Context, dishID uuid.UUID) (int, error) {
	var count int
	err := p.catalog.InDishTx(ctx, dishID, func(ctx context.Context, tx outbound.DishCatalog, d *dish.Dish) error {
		n, err := tx.RecomputeAndStoreLikesCount(ctx, dishID)
		if err != nil {
			return err
		}
		if n != d.LikesCount() {
			p.logger.Warn("Repaired diverged like count",
				zap.String("dish_id", dishID.String()),
				zap.Int("stored", d.LikesCount()),
				zap.Int("actual", n),
			)
		}
		count = n
		return nil
	})
	if err != nil {
		if stderrors.Is(err, dish.ErrDishNotFound) {
			return 0, errors.NewDishNotFoundError(dishID.String()).WithCause(err)
		}
		return 0, errors.NewDatabaseError("rebuild like count", err)
	}
	return count, nil
}

// RebuildAll recomputes every dish's count and returns how many dishes
// were processed
func (p *Projection) RebuildAll(ctx context.Context) (int, error) {
	ids, err := p.catalog.AllDishIDs(ctx)
	if err != nil {
		return 0, errors.NewDatabaseError("list dish ids", err)
	}

	rebuilt := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return rebuilt, err
		}
		if _, err := p.Rebuild(ctx, id); err != nil {
			// Deleted since the id list was read
			if errors.Is(err, errors.CodeDishNotFound) {
				continue
			}
			return rebuilt, err
		}
		rebuilt++
	}

	p.logger.Info("Rebuilt like counts", zap.Int("dishes", rebuilt))
	return rebuilt, nil
}
