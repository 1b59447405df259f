// Package ingredient provides the application layer for a user's
// ingredient list
package ingredient

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/dishgen/internal/domain/ingredient"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPageSize is the ingredient list page size
const DefaultPageSize = 20

// Service implements the ingredient use cases
type Service struct {
	repo     outbound.IngredientRepository
	pageSize int
	logger   *zap.Logger
}

// NewService creates a new ingredient service
func NewService(repo outbound.IngredientRepository, pageSize int, logger *zap.Logger) *Service {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Service{
		repo:     repo,
		pageSize: pageSize,
		logger:   logger.Named("ingredient-service"),
	}
}

var _ inbound.IngredientService = (*Service)(nil)

// Create registers a new ingredient. Names are unique per owner ignoring
// case and character width.
func (s *Service) Create(ctx context.Context, cmd inbound.CreateIngredientCommand) (*inbound.IngredientDTO, error) {
	item, err := ingredient.NewIngredient(cmd.Name, cmd.UserID)
	if err != nil {
		return nil, translate(err, cmd.Name, uuid.Nil)
	}

	exists, err := s.repo.ExistsByNameKey(ctx, cmd.UserID, item.NameKey(), nil)
	if err != nil {
		return nil, errors.NewDatabaseError("check ingredient name", err)
	}
	if exists {
		return nil, errors.NewDuplicateIngredientError(item.Name()).WithCause(ingredient.ErrDuplicateName)
	}

	// The unique index still catches a concurrent insert of the same name
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, translate(err, item.Name(), item.ID())
	}

	s.logger.Info("Ingredient created",
		zap.String("ingredient_id", item.ID().String()),
		zap.String("user_id", cmd.UserID.String()),
	)

	dto := toDTO(item)
	return &dto, nil
}

// Rename changes the name of one of the user's ingredients
func (s *Service) Rename(ctx context.Context, cmd inbound.RenameIngredientCommand) (*inbound.IngredientDTO, error) {
	item, err := s.owned(ctx, cmd.IngredientID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := item.Rename(cmd.Name); err != nil {
		return nil, translate(err, cmd.Name, item.ID())
	}

	id := item.ID()
	exists, err := s.repo.ExistsByNameKey(ctx, cmd.UserID, item.NameKey(), &id)
	if err != nil {
		return nil, errors.NewDatabaseError("check ingredient name", err)
	}
	if exists {
		return nil, errors.NewDuplicateIngredientError(item.Name()).WithCause(ingredient.ErrDuplicateName)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, translate(err, item.Name(), item.ID())
	}

	dto := toDTO(item)
	return &dto, nil
}

// Delete removes one of the user's ingredients
func (s *Service) Delete(ctx context.Context, ingredientID, userID uuid.UUID) error {
	if _, err := s.owned(ctx, ingredientID, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, ingredientID); err != nil {
		return translate(err, "", ingredientID)
	}

	s.logger.Info("Ingredient deleted",
		zap.String("ingredient_id", ingredientID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// Get returns one of the user's ingredients
func (s *Service) Get(ctx context.Context, ingredientID, userID uuid.UUID) (*inbound.IngredientDTO, error) {
	item, err := s.owned(ctx, ingredientID, userID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(item)
	return &dto, nil
}

// List returns a page of the user's ingredients, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, params inbound.PaginationParams) (*inbound.IngredientList, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = s.pageSize
	}

	items, total, err := s.repo.FindByOwner(ctx, userID, params.Offset(), params.PageSize)
	if err != nil {
		return nil, errors.NewDatabaseError("list ingredients", err)
	}

	dtos := make([]inbound.IngredientDTO, len(items))
	for i, it := range items {
		dtos[i] = toDTO(it)
	}

	return &inbound.IngredientList{
		Ingredients: dtos,
		Total:       total,
		Page:        params.Page,
		PageSize:    params.PageSize,
		TotalPages:  (total + params.PageSize - 1) / params.PageSize,
	}, nil
}

// owned loads an ingredient and checks that userID owns it
func (s *Service) owned(ctx context.Context, ingredientID, userID uuid.UUID) (*ingredient.Ingredient, error) {
	item, err := s.repo.FindByID(ctx, ingredientID)
	if err != nil {
		return nil, translate(err, "", ingredientID)
	}
	if !item.IsOwnedBy(userID) {
		return nil, errors.NewNotOwnerError("ingredient").WithCause(ingredient.ErrNotIngredientOwner)
	}
	return item, nil
}

func translate(err error, name string, id uuid.UUID) error {
	switch {
	case stderrors.Is(err, ingredient.ErrDuplicateName):
		return errors.NewDuplicateIngredientError(name).WithCause(err)
	case stderrors.Is(err, ingredient.ErrIngredientNotFound):
		return errors.NewIngredientNotFoundError(id.String()).WithCause(err)
	case stderrors.Is(err, ingredient.ErrNameRequired), stderrors.Is(err, ingredient.ErrNameTooLong):
		return errors.NewValidationError(err.Error()).WithCause(err)
	default:
		return errors.NewDatabaseError("persist ingredient", err)
	}
}

func toDTO(item *ingredient.Ingredient) inbound.IngredientDTO {
	return inbound.IngredientDTO{
		ID:        item.ID(),
		Name:      item.Name(),
		CreatedAt: item.CreatedAt().Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt().Format(time.RFC3339),
	}
}
