package ingredient_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	appingredient "github.com/alchemorsel/dishgen/internal/application/ingredient"
	"github.com/alchemorsel/dishgen/internal/domain/ingredient"
	"github.com/alchemorsel/dishgen/internal/domain/user"
	gormrepo "github.com/alchemorsel/dishgen/internal/infrastructure/persistence/gorm"
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

type IngredientServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	service *appingredient.Service

	owner *user.User
	other *user.User
}

func (suite *IngredientServiceTestSuite) SetupTest() {
	db, err := sqlite.SetupDatabase("", nil)
	require.NoError(suite.T(), err)

	suite.ctx = context.Background()
	suite.db = db
	suite.service = appingredient.NewService(gormrepo.NewIngredientRepository(db), 0, zap.NewNop())

	users := gormrepo.NewUserRepository(db)
	for _, target := range []**user.User{&suite.owner, &suite.other} {
		u, err := user.NewUser(uuid.NewString()[:8], "password123", bcrypt.MinCost)
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), users.Create(suite.ctx, u))
		*target = u
	}
}

func (suite *IngredientServiceTestSuite) TearDownTest() {
	_ = sqlite.Close(suite.db)
}

func (suite *IngredientServiceTestSuite) create(owner uuid.UUID, name string) (*inbound.IngredientDTO, error) {
	return suite.service.Create(suite.ctx, inbound.CreateIngredientCommand{UserID: owner, Name: name})
}

func (suite *IngredientServiceTestSuite) TestCreate() {
	suite.Run("Valid_ShouldTrimAndStore", func() {
		dto, err := suite.create(suite.owner.ID(), "  Egg ")

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "Egg", dto.Name)
		assert.NotEqual(suite.T(), uuid.Nil, dto.ID)
	})

	for _, dup := range []string{"egg", "EGG", "ＥＧＧ", " Egg"} {
		suite.Run(fmt.Sprintf("Duplicate_%s", strings.TrimSpace(dup)), func() {
			_, err := suite.create(suite.owner.ID(), dup)

			require.Error(suite.T(), err)
			assert.True(suite.T(), errors.Is(err, errors.CodeDuplicateIngredient))
			assert.ErrorIs(suite.T(), err, ingredient.ErrDuplicateName)
			assert.Contains(suite.T(), err.Error(), "は既に登録されています。")
		})
	}

	suite.Run("SameNameOtherUser_ShouldBeAllowed", func() {
		_, err := suite.create(suite.other.ID(), "egg")
		assert.NoError(suite.T(), err)
	})

	suite.Run("Blank_ShouldFail", func() {
		_, err := suite.create(suite.owner.ID(), "   ")
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("TooLong_ShouldFail", func() {
		_, err := suite.create(suite.owner.ID(), strings.Repeat("卵", 101))
		assert.ErrorIs(suite.T(), err, ingredient.ErrNameTooLong)
	})
}

func (suite *IngredientServiceTestSuite) TestRename() {
	egg, err := suite.create(suite.owner.ID(), "卵")
	require.NoError(suite.T(), err)
	_, err = suite.create(suite.owner.ID(), "ネギ")
	require.NoError(suite.T(), err)

	suite.Run("SameKeyAsSelf_ShouldSucceed", func() {
		dto, err := suite.service.Rename(suite.ctx, inbound.RenameIngredientCommand{
			IngredientID: egg.ID, UserID: suite.owner.ID(), Name: " 卵 ",
		})
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "卵", dto.Name)
	})

	suite.Run("ClashWithSibling_ShouldFail", func() {
		_, err := suite.service.Rename(suite.ctx, inbound.RenameIngredientCommand{
			IngredientID: egg.ID, UserID: suite.owner.ID(), Name: "ネギ",
		})
		assert.True(suite.T(), errors.Is(err, errors.CodeDuplicateIngredient))
	})

	suite.Run("NotOwner_ShouldBeForbidden", func() {
		_, err := suite.service.Rename(suite.ctx, inbound.RenameIngredientCommand{
			IngredientID: egg.ID, UserID: suite.other.ID(), Name: "玉子",
		})
		assert.True(suite.T(), errors.Is(err, errors.CodeNotOwner))
	})

	suite.Run("Missing_ShouldBeNotFound", func() {
		_, err := suite.service.Rename(suite.ctx, inbound.RenameIngredientCommand{
			IngredientID: uuid.New(), UserID: suite.owner.ID(), Name: "玉子",
		})
		assert.True(suite.T(), errors.Is(err, errors.CodeIngredientNotFound))
	})
}

func (suite *IngredientServiceTestSuite) TestDeleteAndGet() {
	egg, err := suite.create(suite.owner.ID(), "卵")
	require.NoError(suite.T(), err)

	_, err = suite.service.Get(suite.ctx, egg.ID, suite.other.ID())
	assert.True(suite.T(), errors.Is(err, errors.CodeNotOwner))

	err = suite.service.Delete(suite.ctx, egg.ID, suite.other.ID())
	assert.True(suite.T(), errors.Is(err, errors.CodeNotOwner))

	got, err := suite.service.Get(suite.ctx, egg.ID, suite.owner.ID())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "卵", got.Name)

	require.NoError(suite.T(), suite.service.Delete(suite.ctx, egg.ID, suite.owner.ID()))

	_, err = suite.service.Get(suite.ctx, egg.ID, suite.owner.ID())
	assert.True(suite.T(), errors.Is(err, errors.CodeIngredientNotFound))
}

func (suite *IngredientServiceTestSuite) TestList() {
	for i := 0; i < 25; i++ {
		_, err := suite.create(suite.owner.ID(), fmt.Sprintf("材料%02d", i))
		require.NoError(suite.T(), err)
	}

	first, err := suite.service.List(suite.ctx, suite.owner.ID(), inbound.PaginationParams{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), first.Ingredients, appingredient.DefaultPageSize)
	assert.Equal(suite.T(), 25, first.Total)
	assert.Equal(suite.T(), 2, first.TotalPages)
	assert.Equal(suite.T(), 1, first.Page)

	second, err := suite.service.List(suite.ctx, suite.owner.ID(), inbound.PaginationParams{Page: 2})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), second.Ingredients, 5)

	empty, err := suite.service.List(suite.ctx, suite.other.ID(), inbound.PaginationParams{})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), empty.Ingredients)
	assert.Equal(suite.T(), 0, empty.TotalPages)
}

func TestIngredientServiceSuite(t *testing.T) {
	suite.Run(t, new(IngredientServiceTestSuite))
}
