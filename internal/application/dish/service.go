// Package dish provides the application layer for dish name generation,
// saved dishes and likes.
// This implements the use cases defined in the inbound ports
package dish

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/ingredient"
	"github.com/alchemorsel/dishgen/internal/domain/shared"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	msgRegisterMoreIngredients = "料理を生成するには少なくとも2つの材料を登録してください。"
	msgEnterMoreIngredients    = "少なくとも2つの材料を入力してください。"
)

// Options tunes batch and page sizes
type Options struct {
	BatchSize       int
	PageSize        int
	RankingCacheTTL time.Duration
}

// DefaultOptions mirror the generator section defaults
func DefaultOptions() Options {
	return Options{
		BatchSize:       3,
		PageSize:        10,
		RankingCacheTTL: 30 * time.Second,
	}
}

// Service implements the dish use cases
type Service struct {
	catalog     outbound.DishCatalog
	ingredients outbound.IngredientRepository
	cache       outbound.CacheRepository
	events      shared.EventDispatcher
	generator   *dish.Generator
	projection  *Projection
	opts        Options
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewService creates a new dish service
func NewService(
	catalog outbound.DishCatalog,
	ingredients outbound.IngredientRepository,
	cache outbound.CacheRepository,
	events shared.EventDispatcher,
	generator *dish.Generator,
	projection *Projection,
	opts Options,
	logger *zap.Logger,
) *Service {
	defaults := DefaultOptions()
	if opts.BatchSize < 1 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.PageSize < 1 {
		opts.PageSize = defaults.PageSize
	}

	return &Service{
		catalog:     catalog,
		ingredients: ingredients,
		cache:       cache,
		events:      events,
		generator:   generator,
		projection:  projection,
		opts:        opts,
		tracer:      otel.Tracer("github.com/alchemorsel/dishgen/internal/application/dish"),
		logger:      logger.Named("dish-service"),
	}
}

var _ inbound.DishService = (*Service)(nil)

// Generate produces a batch of candidate names from the user's ingredients
func (s *Service) Generate(ctx context.Context, userID uuid.UUID) (*inbound.GenerateResult, error) {
	ctx, span := s.tracer.Start(ctx, "dish.Generate", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	names, err := s.catalog.FetchIngredientNames(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("fetch ingredient names", err)
	}
	if len(names) < dish.MinIngredients {
		return nil, errors.NewInsufficientIngredientsError(msgRegisterMoreIngredients).
			WithCause(dish.ErrInsufficientIngredients)
	}

	items, _, err := s.ingredients.FindByOwner(ctx, userID, 0, -1)
	if err != nil {
		return nil, errors.NewDatabaseError("list ingredients", err)
	}

	dishNames, err := s.generator.Names(names, s.opts.BatchSize)
	if err != nil {
		if stderrors.Is(err, dish.ErrInsufficientIngredients) {
			return nil, errors.NewInsufficientIngredientsError(msgRegisterMoreIngredients).WithCause(err)
		}
		return nil, s.translate(err, "generate dish names")
	}

	s.logger.Debug("Generated dish names",
		zap.String("user_id", userID.String()),
		zap.Int("ingredients", len(names)),
		zap.Int("names", len(dishNames)),
	)

	return &inbound.GenerateResult{
		DishNames:       dishNames,
		Ingredients:     ingredientDTOs(items),
		IngredientNames: names,
	}, nil
}

// GenerateDemo produces a batch of names for anonymous input
func (s *Service) GenerateDemo(ctx context.Context, cmd inbound.DemoGenerateCommand) (*inbound.GenerateResult, error) {
	_, span := s.tracer.Start(ctx, "dish.GenerateDemo")
	defer span.End()

	names := cmd.Ingredients
	if len(names) == 0 {
		names = strings.Split(cmd.Input, ",")
	}
	names = cleanNames(names)
	if len(names) < dish.MinIngredients {
		return nil, errors.NewInsufficientIngredientsError(msgEnterMoreIngredients).
			WithCause(dish.ErrInsufficientIngredients)
	}

	dishNames, err := s.generator.Names(names, s.opts.BatchSize)
	if err != nil {
		if stderrors.Is(err, dish.ErrInsufficientIngredients) {
			return nil, errors.NewInsufficientIngredientsError(msgEnterMoreIngredients).WithCause(err)
		}
		return nil, s.translate(err, "generate dish names")
	}

	return &inbound.GenerateResult{
		DishNames:       dishNames,
		IngredientNames: names,
	}, nil
}

// ComposeDemo produces one name and the ingredients it was built from
func (s *Service) ComposeDemo(ctx context.Context, cmd inbound.ComposeDemoCommand) (*inbound.ComposeResult, error) {
	_, span := s.tracer.Start(ctx, "dish.ComposeDemo")
	defer span.End()

	c, err := s.generator.Compose(cleanNames(cmd.Ingredients))
	if err != nil {
		return nil, s.translate(err, "compose dish name")
	}

	return &inbound.ComposeResult{
		DishName:        c.Name,
		IngredientsUsed: c.Ingredients,
	}, nil
}

// Save keeps a generated name. Ingredient ids the user does not own are
// dropped; if none remain the dish is rejected.
func (s *Service) Save(ctx context.Context, cmd inbound.SaveDishCommand) (*inbound.DishDTO, error) {
	ctx, span := s.tracer.Start(ctx, "dish.Save")
	defer span.End()

	if strings.TrimSpace(cmd.Name) == "" {
		return nil, s.translate(dish.ErrNameRequired, "save dish")
	}

	items, err := s.ingredients.FindByIDsForOwner(ctx, cmd.UserID, cmd.IngredientIDs)
	if err != nil {
		return nil, errors.NewDatabaseError("load ingredients", err)
	}

	refs := make([]dish.IngredientRef, len(items))
	for i, it := range items {
		refs[i] = dish.IngredientRef{ID: it.ID(), Name: it.Name()}
	}

	d, err := dish.NewDish(cmd.Name, cmd.UserID, refs)
	if err != nil {
		return nil, s.translate(err, "save dish")
	}

	if err := s.catalog.CreateDish(ctx, d); err != nil {
		return nil, errors.NewDatabaseError("create dish", err)
	}

	s.publish(ctx, d.Events())
	s.invalidateRanking(ctx)

	s.logger.Info("Dish saved",
		zap.String("dish_id", d.ID().String()),
		zap.String("user_id", cmd.UserID.String()),
		zap.Int("ingredients", len(refs)),
	)

	dto := toDTO(d, false)
	return &dto, nil
}

// Delete removes one of the user's dishes together with its likes
func (s *Service) Delete(ctx context.Context, dishID, userID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "dish.Delete")
	defer span.End()

	d, err := s.catalog.FindDish(ctx, dishID)
	if err != nil {
		return s.translateFor(err, dishID, "find dish")
	}

	if err := d.MarkDeleted(userID); err != nil {
		return s.translateFor(err, dishID, "delete dish")
	}

	if err := s.catalog.DeleteDish(ctx, dishID); err != nil {
		return s.translateFor(err, dishID, "delete dish")
	}

	s.publish(ctx, d.Events())
	s.invalidateRanking(ctx)

	s.logger.Info("Dish deleted",
		zap.String("dish_id", dishID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// ListMine returns the user's own dishes, newest first
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, params inbound.PaginationParams) (*inbound.DishList, error) {
	params = s.normalize(params)

	dishes, total, err := s.catalog.ListByOwner(ctx, userID, params.Offset(), params.PageSize)
	if err != nil {
		return nil, errors.NewDatabaseError("list dishes", err)
	}

	return newDishList(dishes, nil, total, params), nil
}

// Recent returns all dishes, newest first, flagging the ones viewerID likes
func (s *Service) Recent(ctx context.Context, viewerID *uuid.UUID, params inbound.PaginationParams) (*inbound.DishList, error) {
	params = s.normalize(params)

	dishes, total, err := s.catalog.ListRecent(ctx, params.Offset(), params.PageSize)
	if err != nil {
		return nil, errors.NewDatabaseError("list recent dishes", err)
	}

	liked, err := s.likedBy(ctx, viewerID, dishes)
	if err != nil {
		return nil, err
	}

	return newDishList(dishes, liked, total, params), nil
}

func (s *Service) normalize(p inbound.PaginationParams) inbound.PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = s.opts.PageSize
	}
	return p
}

func (s *Service) likedBy(ctx context.Context, viewerID *uuid.UUID, dishes []*dish.Dish) ([]uuid.UUID, error) {
	if viewerID == nil || len(dishes) == 0 {
		return []uuid.UUID{}, nil
	}

	ids := make([]uuid.UUID, len(dishes))
	for i, d := range dishes {
		ids[i] = d.ID()
	}

	liked, err := s.catalog.LikedDishIDs(ctx, *viewerID, ids)
	if err != nil {
		return nil, errors.NewDatabaseError("load liked dishes", err)
	}
	return liked, nil
}

func (s *Service) publish(ctx context.Context, events []shared.DomainEvent) {
	for _, event := range events {
		if err := s.events.Dispatch(ctx, event); err != nil {
			s.logger.Error("Failed to publish event",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}
}

// translate maps domain errors to application errors
func (s *Service) translate(err error, op string) error {
	return s.translateFor(err, uuid.Nil, op)
}

func (s *Service) translateFor(err error, dishID uuid.UUID, op string) error {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, dish.ErrInsufficientIngredients):
		return errors.NewInsufficientIngredientsError(err.Error()).WithCause(err)
	case stderrors.Is(err, dish.ErrSelfLikeForbidden):
		return errors.NewSelfLikeForbiddenError(err.Error()).WithCause(err)
	case stderrors.Is(err, dish.ErrDishNotFound):
		return errors.NewDishNotFoundError(dishID.String()).WithCause(err)
	case stderrors.Is(err, dish.ErrNotDishOwner):
		return errors.NewNotOwnerError("dish").WithCause(err)
	case stderrors.Is(err, dish.ErrNameRequired),
		stderrors.Is(err, dish.ErrNameTooLong),
		stderrors.Is(err, dish.ErrNoValidIngredients),
		stderrors.Is(err, dish.ErrInvalidBatchSize):
		return errors.NewBadRequestError(err.Error()).WithCause(err)
	default:
		return errors.NewDatabaseError(op, err)
	}
}

// cleanNames trims entries and drops blanks
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func toDTO(d *dish.Dish, liked bool) inbound.DishDTO {
	refs := d.Ingredients()
	ingredients := make([]inbound.IngredientDTO, len(refs))
	for i, ref := range refs {
		ingredients[i] = inbound.IngredientDTO{ID: ref.ID, Name: ref.Name}
	}

	return inbound.DishDTO{
		ID:          d.ID(),
		Name:        d.Name(),
		OwnerID:     d.OwnerID(),
		Ingredients: ingredients,
		LikesCount:  d.LikesCount(),
		LikedByMe:   liked,
		CreatedAt:   d.CreatedAt().Format(time.RFC3339),
	}
}

func ingredientDTOs(items []*ingredient.Ingredient) []inbound.IngredientDTO {
	out := make([]inbound.IngredientDTO, len(items))
	for i, it := range items {
		out[i] = inbound.IngredientDTO{
			ID:        it.ID(),
			Name:      it.Name(),
			CreatedAt: it.CreatedAt().Format(time.RFC3339),
			UpdatedAt: it.UpdatedAt().Format(time.RFC3339),
		}
	}
	return out
}

func newDishList(dishes []*dish.Dish, liked []uuid.UUID, total int, params inbound.PaginationParams) *inbound.DishList {
	if liked == nil {
		liked = []uuid.UUID{}
	}
	likedSet := make(map[uuid.UUID]struct{}, len(liked))
	for _, id := range liked {
		likedSet[id] = struct{}{}
	}

	dtos := make([]inbound.DishDTO, len(dishes))
	for i, d := range dishes {
		_, ok := likedSet[d.ID()]
		dtos[i] = toDTO(d, ok)
	}

	return &inbound.DishList{
		Dishes:       dtos,
		LikedDishIDs: liked,
		Total:        total,
		Page:         params.Page,
		PageSize:     params.PageSize,
		TotalPages:   totalPages(total, params.PageSize),
	}
}

func totalPages(total, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
