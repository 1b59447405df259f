//go:build integration
// +build integration

// Package integration provides integration tests using real database instances
package integration

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	appdish "github.com/alchemorsel/dishgen/internal/application/dish"
	appingredient "github.com/alchemorsel/dishgen/internal/application/ingredient"
	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/user"
	"github.com/alchemorsel/dishgen/internal/infrastructure/events"
	gormrepo "github.com/alchemorsel/dishgen/internal/infrastructure/persistence/gorm"
	rediscache "github.com/alchemorsel/dishgen/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/alchemorsel/dishgen/test/testutils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// DishIntegrationTestSuite runs the dish service against postgres and redis
type DishIntegrationTestSuite struct {
	suite.Suite
	ctx        context.Context
	testDB     *testutils.TestDatabase
	redis      redis.UniversalClient
	catalog    *gormrepo.DishCatalog
	projection *appdish.Projection
	service    *appdish.Service
	ingredient *appingredient.Service
	fixtures   *testutils.Fixtures
	dishes     *testutils.DishAssertions
	database   *testutils.DatabaseAssertions
}

// SetupSuite starts the containers and applies the migrations
func (suite *DishIntegrationTestSuite) SetupSuite() {
	suite.ctx = context.Background()
	logger := zap.NewNop()

	suite.testDB = testutils.SetupTestDatabase(suite.T())
	require.NoError(suite.T(), suite.testDB.RunMigrations(), "Failed to run database migrations")

	suite.redis = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{testutils.SetupRedisContainer(suite.T())},
	})
	suite.T().Cleanup(func() { _ = suite.redis.Close() })

	db := suite.testDB.GormDB
	suite.catalog = gormrepo.NewDishCatalog(db)
	ingredients := gormrepo.NewIngredientRepository(db)

	suite.projection = appdish.NewProjection(suite.catalog, logger)
	suite.service = appdish.NewService(
		suite.catalog,
		ingredients,
		rediscache.NewCacheRepository(suite.redis, "dishgen-it", logger),
		events.NewDispatcher(logger),
		dish.NewSeededGenerator(7),
		suite.projection,
		appdish.Options{BatchSize: 5, PageSize: 10, RankingCacheTTL: time.Minute},
		logger,
	)

	suite.ingredient = appingredient.NewService(ingredients, 20, logger)

	suite.fixtures = testutils.NewFixtures(suite.T(), 42, gormrepo.NewUserRepository(db), ingredients, suite.catalog)
	suite.dishes = testutils.NewDishAssertions(suite.T())
	suite.database = testutils.NewDatabaseAssertions(suite.T(), suite.testDB)
}

// SetupTest prepares each test with clean database and cache state
func (suite *DishIntegrationTestSuite) SetupTest() {
	require.NoError(suite.T(), suite.testDB.TruncateAllTables(), "Failed to clean database")
	require.NoError(suite.T(), suite.redis.FlushDB(suite.ctx).Err(), "Failed to flush redis")
}

func (suite *DishIntegrationTestSuite) ownerDish() (*user.User, *dish.Dish) {
	owner := suite.fixtures.User()
	return owner, suite.fixtures.Dish(owner, suite.fixtures.Ingredients(owner, 3))
}

func (suite *DishIntegrationTestSuite) TestSaveStoresOnlyOwnedIngredients() {
	// Arrange
	owner := suite.fixtures.User()
	other := suite.fixtures.User()
	owned := suite.fixtures.Ingredients(owner, 2)
	foreign := suite.fixtures.Ingredients(other, 1)

	// Act
	dto, err := suite.service.Save(suite.ctx, inbound.SaveDishCommand{
		UserID:        owner.ID(),
		Name:          "卵とネギの炒め物",
		IngredientIDs: []uuid.UUID{owned[0].ID(), owned[1].ID(), foreign[0].ID()},
	})

	// Assert
	require.NoError(suite.T(), err)
	stored, err := suite.catalog.FindDish(suite.ctx, dto.ID)
	require.NoError(suite.T(), err)
	suite.dishes.ValidDish(stored)
	suite.dishes.OwnedIngredients(stored, owned)
	assert.Len(suite.T(), stored.IngredientIDs(), 2)
	suite.database.RecordCount("dish_ingredients", 2)
}

func (suite *DishIntegrationTestSuite) TestToggleLikeRoundTrip() {
	// Arrange
	_, d := suite.ownerDish()
	liker := suite.fixtures.User()

	// Act
	liked, err := suite.service.ToggleLike(suite.ctx, d.ID(), liker.ID())
	require.NoError(suite.T(), err)
	unliked, err := suite.service.ToggleLike(suite.ctx, d.ID(), liker.ID())
	require.NoError(suite.T(), err)

	// Assert
	assert.Equal(suite.T(), dish.LikeActionLiked, liked.Action)
	assert.Equal(suite.T(), 1, liked.LikesCount)
	assert.Equal(suite.T(), dish.LikeActionUnliked, unliked.Action)
	assert.Equal(suite.T(), 0, unliked.LikesCount)
	suite.database.RecordCount("likes", 0)
}

func (suite *DishIntegrationTestSuite) TestSelfLikeForbidden() {
	owner, d := suite.ownerDish()

	_, err := suite.service.ToggleLike(suite.ctx, d.ID(), owner.ID())

	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.Is(err, errors.CodeSelfLikeForbidden))
	suite.database.RecordCount("likes", 0)
}

func (suite *DishIntegrationTestSuite) TestConcurrentTogglesKeepCountConsistent() {
	// Arrange
	_, d := suite.ownerDish()
	likers := make([]*user.User, 8)
	for i := range likers {
		likers[i] = suite.fixtures.User()
	}

	// Act: every liker toggles three times and ends up liking
	var wg sync.WaitGroup
	for _, u := range likers {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 3; i++ {
				_, err := suite.service.ToggleLike(suite.ctx, d.ID(), userID)
				assert.NoError(suite.T(), err)
			}
		}(u.ID())
	}
	wg.Wait()

	// Assert
	stored, err := suite.catalog.FindDish(suite.ctx, d.ID())
	require.NoError(suite.T(), err)
	suite.dishes.LikesCount(stored, len(likers))
	suite.database.RecordCount("likes", len(likers))
	suite.database.LikesCountMatchesRelation()
}

func (suite *DishIntegrationTestSuite) TestRebuildAllRepairsDivergedCounts() {
	// Arrange
	_, d := suite.ownerDish()
	liker := suite.fixtures.User()
	_, err := suite.service.ToggleLike(suite.ctx, d.ID(), liker.ID())
	require.NoError(suite.T(), err)

	_, err = suite.testDB.DB.ExecContext(suite.ctx, "UPDATE dishes SET likes_count = 5 WHERE id = $1", d.ID())
	require.NoError(suite.T(), err)

	// Act
	rebuilt, err := suite.projection.RebuildAll(suite.ctx)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, rebuilt)
	suite.database.LikesCountMatchesRelation()
}

func (suite *DishIntegrationTestSuite) TestRankingCacheInvalidatedByLikes() {
	// Arrange
	_, first := suite.ownerDish()
	_, second := suite.ownerDish()
	liker := suite.fixtures.User()
	params := inbound.PaginationParams{Page: 1}

	before, err := suite.service.Ranking(suite.ctx, nil, params)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), before.Dishes, 2)
	// Newest first on equal likes
	assert.Equal(suite.T(), second.ID(), before.Dishes[0].ID)

	// Act
	_, err = suite.service.ToggleLike(suite.ctx, first.ID(), liker.ID())
	require.NoError(suite.T(), err)
	viewer := liker.ID()
	after, err := suite.service.Ranking(suite.ctx, &viewer, params)

	// Assert
	require.NoError(suite.T(), err)
	require.Len(suite.T(), after.Dishes, 2)
	assert.Equal(suite.T(), first.ID(), after.Dishes[0].ID)
	assert.Equal(suite.T(), 1, after.Dishes[0].LikesCount)
	assert.True(suite.T(), after.Dishes[0].LikedByMe)
	assert.Equal(suite.T(), []uuid.UUID{first.ID()}, after.LikedDishIDs)
}

func (suite *DishIntegrationTestSuite) TestDeleteRemovesLikes() {
	owner, d := suite.ownerDish()
	liker := suite.fixtures.User()
	_, err := suite.service.ToggleLike(suite.ctx, d.ID(), liker.ID())
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.service.Delete(suite.ctx, d.ID(), owner.ID()))

	suite.database.RecordCount("dishes", 0)
	suite.database.RecordCount("likes", 0)
}

func (suite *DishIntegrationTestSuite) TestIngredientNamesWhoseKeyOutgrowsTheName() {
	owner := suite.fixtures.User()

	for _, r := range []string{"ß", "㍿"} {
		suite.Run(r, func() {
			// Act
			created, err := suite.ingredient.Create(suite.ctx, inbound.CreateIngredientCommand{
				UserID: owner.ID(),
				Name:   strings.Repeat(r, 100),
			})

			// Assert
			require.NoError(suite.T(), err)
			assert.Equal(suite.T(), strings.Repeat(r, 100), created.Name)
		})
	}

	// ẞ folds to the same key as ß
	_, err := suite.ingredient.Create(suite.ctx, inbound.CreateIngredientCommand{
		UserID: owner.ID(),
		Name:   strings.Repeat("ẞ", 100),
	})
	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.Is(err, errors.CodeDuplicateIngredient))
}

func TestDishIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(DishIntegrationTestSuite))
}
