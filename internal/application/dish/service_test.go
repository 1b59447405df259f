package dish_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	appdish "github.com/alchemorsel/dishgen/internal/application/dish"
	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/ingredient"
	"github.com/alchemorsel/dishgen/internal/domain/shared"
	"github.com/alchemorsel/dishgen/internal/domain/user"
	"github.com/alchemorsel/dishgen/internal/infrastructure/events"
	gormrepo "github.com/alchemorsel/dishgen/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DishServiceTestSuite runs the dish use cases against in-memory SQLite
type DishServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *gorm.DB
	catalog     *gormrepo.DishCatalog
	ingredients *gormrepo.IngredientRepository
	users       *gormrepo.UserRepository
	cache       *memory.CacheRepository
	dispatcher  *events.Dispatcher
	projection  *appdish.Projection
	service     *appdish.Service

	received []shared.DomainEvent
	mu       sync.Mutex

	owner  *user.User
	viewer *user.User
}

func (suite *DishServiceTestSuite) SetupTest() {
	db, err := sqlite.SetupDatabase("", nil)
	require.NoError(suite.T(), err)

	suite.ctx = context.Background()
	suite.db = db
	suite.catalog = gormrepo.NewDishCatalog(db)
	suite.ingredients = gormrepo.NewIngredientRepository(db)
	suite.users = gormrepo.NewUserRepository(db)
	suite.cache = memory.NewCacheRepository(time.Minute)
	suite.dispatcher = events.NewDispatcher(zap.NewNop())
	suite.received = nil

	for _, name := range []string{dish.EventDishSaved, dish.EventDishLiked, dish.EventDishUnliked, dish.EventDishDeleted} {
		suite.dispatcher.Register(name, func(ctx context.Context, e shared.DomainEvent) error {
			suite.mu.Lock()
			suite.received = append(suite.received, e)
			suite.mu.Unlock()
			return nil
		})
	}

	suite.projection = appdish.NewProjection(suite.catalog, zap.NewNop())
	suite.service = appdish.NewService(
		suite.catalog,
		suite.ingredients,
		suite.cache,
		suite.dispatcher,
		dish.NewSeededGenerator(42),
		suite.projection,
		appdish.DefaultOptions(),
		zap.NewNop(),
	)

	suite.owner = suite.createUser("owner")
	suite.viewer = suite.createUser("viewer")
}

func (suite *DishServiceTestSuite) TearDownTest() {
	suite.cache.Close()
	_ = sqlite.Close(suite.db)
}

func (suite *DishServiceTestSuite) createUser(name string) *user.User {
	u, err := user.NewUser(name, "password123", bcrypt.MinCost)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.users.Create(suite.ctx, u))
	return u
}

func (suite *DishServiceTestSuite) createIngredients(owner uuid.UUID, names ...string) []*ingredient.Ingredient {
	out := make([]*ingredient.Ingredient, len(names))
	for i, name := range names {
		it, err := ingredient.NewIngredient(name, owner)
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), suite.ingredients.Create(suite.ctx, it))
		out[i] = it
	}
	return out
}

func (suite *DishServiceTestSuite) saveDish(owner uuid.UUID, name string, items ...*ingredient.Ingredient) *inbound.DishDTO {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	dto, err := suite.service.Save(suite.ctx, inbound.SaveDishCommand{UserID: owner, Name: name, IngredientIDs: ids})
	require.NoError(suite.T(), err)
	return dto
}

func (suite *DishServiceTestSuite) eventNames() []string {
	suite.mu.Lock()
	defer suite.mu.Unlock()
	names := make([]string, len(suite.received))
	for i, e := range suite.received {
		names[i] = e.EventName()
	}
	return names
}

func (suite *DishServiceTestSuite) TestGenerate() {
	suite.Run("TooFewIngredients_ShouldFail", func() {
		suite.createIngredients(suite.owner.ID(), "卵")

		result, err := suite.service.Generate(suite.ctx, suite.owner.ID())

		assert.Nil(suite.T(), result)
		assert.True(suite.T(), errors.Is(err, errors.CodeInsufficientIngredients))
		assert.ErrorIs(suite.T(), err, dish.ErrInsufficientIngredients)
		assert.Contains(suite.T(), err.Error(), "料理を生成するには少なくとも2つの材料を登録してください。")
	})

	suite.Run("EnoughIngredients_ShouldReturnBatch", func() {
		suite.createIngredients(suite.owner.ID(), "ネギ", "チーズ")

		result, err := suite.service.Generate(suite.ctx, suite.owner.ID())

		require.NoError(suite.T(), err)
		assert.NotEmpty(suite.T(), result.DishNames)
		assert.LessOrEqual(suite.T(), len(result.DishNames), 3)
		assert.ElementsMatch(suite.T(), []string{"卵", "ネギ", "チーズ"}, result.IngredientNames)
		assert.Len(suite.T(), result.Ingredients, 3)
	})

	suite.Run("OtherUsersIngredients_ShouldNotCount", func() {
		suite.createIngredients(suite.viewer.ID(), "トマト")

		_, err := suite.service.Generate(suite.ctx, suite.viewer.ID())

		assert.True(suite.T(), errors.Is(err, errors.CodeInsufficientIngredients))
	})
}

func (suite *DishServiceTestSuite) TestGenerateDemo() {
	suite.Run("CommaSeparatedInput", func() {
		result, err := suite.service.GenerateDemo(suite.ctx, inbound.DemoGenerateCommand{Input: " 卵 , ,ネギ,チーズ "})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []string{"卵", "ネギ", "チーズ"}, result.IngredientNames)
		assert.NotEmpty(suite.T(), result.DishNames)
	})

	suite.Run("ListInput", func() {
		result, err := suite.service.GenerateDemo(suite.ctx, inbound.DemoGenerateCommand{Ingredients: []string{"卵", "ネギ"}})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []string{"卵", "ネギ"}, result.IngredientNames)
	})

	suite.Run("EmptyListFallsBackToInput", func() {
		result, err := suite.service.GenerateDemo(suite.ctx, inbound.DemoGenerateCommand{
			Input:       "卵,ネギ",
			Ingredients: []string{},
		})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []string{"卵", "ネギ"}, result.IngredientNames)
	})

	for _, input := range []string{"", "卵", "卵, ,", "卵,卵"} {
		suite.Run(fmt.Sprintf("Insufficient_%q", input), func() {
			_, err := suite.service.GenerateDemo(suite.ctx, inbound.DemoGenerateCommand{Input: input})

			require.Error(suite.T(), err)
			assert.True(suite.T(), errors.Is(err, errors.CodeInsufficientIngredients))
			assert.Contains(suite.T(), err.Error(), "少なくとも2つの材料を入力してください。")
		})
	}
}

func (suite *DishServiceTestSuite) TestComposeDemo() {
	result, err := suite.service.ComposeDemo(suite.ctx, inbound.ComposeDemoCommand{Ingredients: []string{"卵", "ネギ", "チーズ"}})

	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), result.DishName)
	require.NotEmpty(suite.T(), result.IngredientsUsed)
	for _, used := range result.IngredientsUsed {
		assert.Contains(suite.T(), []string{"卵", "ネギ", "チーズ"}, used)
		assert.Contains(suite.T(), result.DishName, used)
	}

	_, err = suite.service.ComposeDemo(suite.ctx, inbound.ComposeDemoCommand{Ingredients: []string{"卵"}})
	assert.True(suite.T(), errors.Is(err, errors.CodeInsufficientIngredients))
}

func (suite *DishServiceTestSuite) TestSave() {
	mine := suite.createIngredients(suite.owner.ID(), "卵", "ネギ")
	theirs := suite.createIngredients(suite.viewer.ID(), "トマト")

	suite.Run("ForeignIngredients_ShouldBeDropped", func() {
		dto := suite.saveDish(suite.owner.ID(), "  卵とネギの炒め物 ", mine[0], mine[1], theirs[0])

		assert.Equal(suite.T(), "卵とネギの炒め物", dto.Name)
		assert.Equal(suite.T(), suite.owner.ID(), dto.OwnerID)
		assert.Len(suite.T(), dto.Ingredients, 2)
		assert.Equal(suite.T(), 0, dto.LikesCount)
		assert.Contains(suite.T(), suite.eventNames(), dish.EventDishSaved)
	})

	suite.Run("OnlyForeignIngredients_ShouldFail", func() {
		_, err := suite.service.Save(suite.ctx, inbound.SaveDishCommand{
			UserID:        suite.owner.ID(),
			Name:          "盗まれたトマト",
			IngredientIDs: []uuid.UUID{theirs[0].ID(), uuid.New()},
		})

		assert.True(suite.T(), errors.Is(err, errors.CodeBadRequest))
		assert.ErrorIs(suite.T(), err, dish.ErrNoValidIngredients)
		assert.Contains(suite.T(), err.Error(), "有効な材料が選択されていません。")
	})

	suite.Run("BlankName_ShouldFail", func() {
		_, err := suite.service.Save(suite.ctx, inbound.SaveDishCommand{
			UserID:        suite.owner.ID(),
			Name:          "   ",
			IngredientIDs: []uuid.UUID{mine[0].ID()},
		})

		assert.ErrorIs(suite.T(), err, dish.ErrNameRequired)
	})
}

func (suite *DishServiceTestSuite) TestToggleLike() {
	items := suite.createIngredients(suite.owner.ID(), "卵", "ネギ")
	saved := suite.saveDish(suite.owner.ID(), "幻の卵ネギ", items...)

	suite.Run("SelfLike_ShouldBeForbiddenWithoutChange", func() {
		result, err := suite.service.ToggleLike(suite.ctx, saved.ID, suite.owner.ID())

		assert.Nil(suite.T(), result)
		assert.True(suite.T(), errors.Is(err, errors.CodeSelfLikeForbidden))
		assert.ErrorIs(suite.T(), err, dish.ErrSelfLikeForbidden)

		exists, err := suite.catalog.LikeExists(suite.ctx, saved.ID, suite.owner.ID())
		require.NoError(suite.T(), err)
		assert.False(suite.T(), exists)
	})

	suite.Run("FirstToggle_ShouldLike", func() {
		result, err := suite.service.ToggleLike(suite.ctx, saved.ID, suite.viewer.ID())

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), dish.LikeActionLiked, result.Action)
		assert.Equal(suite.T(), 1, result.LikesCount)
		assert.Contains(suite.T(), suite.eventNames(), dish.EventDishLiked)

		stored, err := suite.catalog.FindDish(suite.ctx, saved.ID)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 1, stored.LikesCount())
	})

	suite.Run("SecondToggle_ShouldRestoreState", func() {
		result, err := suite.service.ToggleLike(suite.ctx, saved.ID, suite.viewer.ID())

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), dish.LikeActionUnliked, result.Action)
		assert.Equal(suite.T(), 0, result.LikesCount)
		assert.Contains(suite.T(), suite.eventNames(), dish.EventDishUnliked)

		exists, err := suite.catalog.LikeExists(suite.ctx, saved.ID, suite.viewer.ID())
		require.NoError(suite.T(), err)
		assert.False(suite.T(), exists)
	})

	suite.Run("MissingDish_ShouldBeNotFound", func() {
		_, err := suite.service.ToggleLike(suite.ctx, uuid.New(), suite.viewer.ID())

		assert.True(suite.T(), errors.Is(err, errors.CodeDishNotFound))
	})
}

func (suite *DishServiceTestSuite) TestToggleLike_ConcurrentUsers() {
	items := suite.createIngredients(suite.owner.ID(), "卵", "ネギ")
	saved := suite.saveDish(suite.owner.ID(), "群衆の卵", items...)

	const n = 12
	likers := make([]*user.User, n)
	for i := range likers {
		likers[i] = suite.createUser(fmt.Sprintf("liker%d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, u := range likers {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := suite.service.ToggleLike(suite.ctx, saved.ID, userID)
			errs <- err
		}(u.ID())
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(suite.T(), err)
	}

	stored, err := suite.catalog.FindDish(suite.ctx, saved.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), n, stored.LikesCount())
}

func (suite *DishServiceTestSuite) TestDelete() {
	items := suite.createIngredients(suite.owner.ID(), "卵", "ネギ")
	saved := suite.saveDish(suite.owner.ID(), "消える卵", items...)
	_, err := suite.service.ToggleLike(suite.ctx, saved.ID, suite.viewer.ID())
	require.NoError(suite.T(), err)

	suite.Run("NotOwner_ShouldBeForbidden", func() {
		err := suite.service.Delete(suite.ctx, saved.ID, suite.viewer.ID())

		assert.True(suite.T(), errors.Is(err, errors.CodeNotOwner))
	})

	suite.Run("Owner_ShouldCascadeLikes", func() {
		require.NoError(suite.T(), suite.service.Delete(suite.ctx, saved.ID, suite.owner.ID()))

		exists, err := suite.catalog.LikeExists(suite.ctx, saved.ID, suite.viewer.ID())
		require.NoError(suite.T(), err)
		assert.False(suite.T(), exists)
		assert.Contains(suite.T(), suite.eventNames(), dish.EventDishDeleted)
	})

	suite.Run("Missing_ShouldBeNotFound", func() {
		err := suite.service.Delete(suite.ctx, saved.ID, suite.owner.ID())

		assert.True(suite.T(), errors.Is(err, errors.CodeDishNotFound))
	})
}

func (suite *DishServiceTestSuite) TestListings() {
	items := suite.createIngredients(suite.owner.ID(), "卵", "ネギ")
	older := suite.saveDish(suite.owner.ID(), "古い卵", items...)
	newer := suite.saveDish(suite.owner.ID(), "新しい卵", items...)
	require.NoError(suite.T(), suite.db.Model(&gormrepo.DishModel{}).
		Where("id = ?", older.ID).
		UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	_, err := suite.service.ToggleLike(suite.ctx, older.ID, suite.viewer.ID())
	require.NoError(suite.T(), err)

	suite.Run("ListMine_NewestFirst", func() {
		list, err := suite.service.ListMine(suite.ctx, suite.owner.ID(), inbound.PaginationParams{Page: 1})

		require.NoError(suite.T(), err)
		require.Len(suite.T(), list.Dishes, 2)
		assert.Equal(suite.T(), newer.ID, list.Dishes[0].ID)
		assert.Equal(suite.T(), 10, list.PageSize)
		assert.Equal(suite.T(), 1, list.TotalPages)
	})

	suite.Run("Ranking_ByLikesThenNewest", func() {
		viewer := suite.viewer.ID()
		list, err := suite.service.Ranking(suite.ctx, &viewer, inbound.PaginationParams{Page: 1})

		require.NoError(suite.T(), err)
		require.Len(suite.T(), list.Dishes, 2)
		assert.Equal(suite.T(), older.ID, list.Dishes[0].ID)
		assert.Equal(suite.T(), 1, list.Dishes[0].LikesCount)
		assert.True(suite.T(), list.Dishes[0].LikedByMe)
		assert.False(suite.T(), list.Dishes[1].LikedByMe)
		assert.Equal(suite.T(), []uuid.UUID{older.ID}, list.LikedDishIDs)
	})

	suite.Run("Ranking_AnonymousViewer", func() {
		list, err := suite.service.Ranking(suite.ctx, nil, inbound.PaginationParams{Page: 1})

		require.NoError(suite.T(), err)
		assert.Empty(suite.T(), list.LikedDishIDs)
		assert.False(suite.T(), list.Dishes[0].LikedByMe)
	})

	suite.Run("Ranking_CacheInvalidatedByToggle", func() {
		_, err := suite.service.ToggleLike(suite.ctx, older.ID, suite.viewer.ID())
		require.NoError(suite.T(), err)

		list, err := suite.service.Ranking(suite.ctx, nil, inbound.PaginationParams{Page: 1})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), newer.ID, list.Dishes[0].ID, "with no likes left the newest leads")
		assert.Equal(suite.T(), 0, list.Dishes[1].LikesCount)
	})

	suite.Run("Recent_NewestFirst", func() {
		list, err := suite.service.Recent(suite.ctx, nil, inbound.PaginationParams{Page: 1, PageSize: 1})

		require.NoError(suite.T(), err)
		require.Len(suite.T(), list.Dishes, 1)
		assert.Equal(suite.T(), newer.ID, list.Dishes[0].ID)
		assert.Equal(suite.T(), 2, list.Total)
		assert.Equal(suite.T(), 2, list.TotalPages)
	})
}

func (suite *DishServiceTestSuite) TestProjectionRebuild() {
	items := suite.createIngredients(suite.owner.ID(), "卵", "ネギ")
	saved := suite.saveDish(suite.owner.ID(), "ずれた卵", items...)
	_, err := suite.service.ToggleLike(suite.ctx, saved.ID, suite.viewer.ID())
	require.NoError(suite.T(), err)

	// Simulate drift between the counter and the like rows
	require.NoError(suite.T(), suite.db.Model(&gormrepo.DishModel{}).
		Where("id = ?", saved.ID).
		UpdateColumn("likes_count", 7).Error)

	count, err := suite.projection.Rebuild(suite.ctx, saved.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)

	require.NoError(suite.T(), suite.db.Model(&gormrepo.DishModel{}).
		Where("id = ?", saved.ID).
		UpdateColumn("likes_count", 3).Error)

	rebuilt, err := suite.projection.RebuildAll(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, rebuilt)

	stored, err := suite.catalog.FindDish(suite.ctx, saved.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, stored.LikesCount())

	_, err = suite.projection.Rebuild(suite.ctx, uuid.New())
	assert.True(suite.T(), errors.Is(err, errors.CodeDishNotFound))
}

func TestDishServiceSuite(t *testing.T) {
	suite.Run(t, new(DishServiceTestSuite))
}
