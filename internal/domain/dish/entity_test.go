package dish

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// DishTestSuite tests the dish aggregate
type DishTestSuite struct {
	suite.Suite
	ownerID     uuid.UUID
	otherID     uuid.UUID
	ingredients []IngredientRef
}

func (suite *DishTestSuite) SetupTest() {
	suite.ownerID = uuid.New()
	suite.otherID = uuid.New()
	suite.ingredients = []IngredientRef{
		{ID: uuid.New(), Name: "卵"},
		{ID: uuid.New(), Name: "ネギ"},
	}
}

func (suite *DishTestSuite) TestNewDish() {
	suite.Run("ValidDish_ShouldCreateWithSavedEvent", func() {
		// Act
		d, err := NewDish("  卵とネギの丼 ", suite.ownerID, suite.ingredients)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "卵とネギの丼", d.Name())
		assert.Equal(suite.T(), suite.ownerID, d.OwnerID())
		assert.Equal(suite.T(), 0, d.LikesCount())
		assert.Len(suite.T(), d.IngredientIDs(), 2)

		events := d.Events()
		require.Len(suite.T(), events, 1)
		assert.Equal(suite.T(), EventDishSaved, events[0].EventName())
		assert.Empty(suite.T(), d.Events())
	})

	suite.Run("EmptyName_ShouldFail", func() {
		_, err := NewDish("   ", suite.ownerID, suite.ingredients)
		assert.ErrorIs(suite.T(), err, ErrNameRequired)
	})

	suite.Run("NameLimitCountsCharacters_ShouldAcceptExactly200", func() {
		_, err := NewDish(strings.Repeat("丼", MaxNameLength), suite.ownerID, suite.ingredients)
		assert.NoError(suite.T(), err)

		_, err = NewDish(strings.Repeat("丼", MaxNameLength+1), suite.ownerID, suite.ingredients)
		assert.ErrorIs(suite.T(), err, ErrNameTooLong)
	})

	suite.Run("NoIngredients_ShouldFail", func() {
		_, err := NewDish("謎の料理", suite.ownerID, nil)
		assert.ErrorIs(suite.T(), err, ErrNoValidIngredients)
	})
}

func (suite *DishTestSuite) TestLikes() {
	suite.Run("OwnerLike_ShouldBeForbidden", func() {
		d, err := NewDish("禁断の卵ネギ", suite.ownerID, suite.ingredients)
		require.NoError(suite.T(), err)

		assert.ErrorIs(suite.T(), d.CanBeLikedBy(suite.ownerID), ErrSelfLikeForbidden)
		assert.NoError(suite.T(), d.CanBeLikedBy(suite.otherID))
	})

	suite.Run("ApplyLikeToggle_ShouldStoreCountAndRaiseEvent", func() {
		// Arrange
		d := Reconstruct(uuid.New(), "幻の卵ネギ", suite.ownerID, suite.ingredients, 4, timeZero)

		// Act
		err := d.ApplyLikeToggle(suite.otherID, LikeActionLiked, 5)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 5, d.LikesCount())
		events := d.Events()
		require.Len(suite.T(), events, 1)
		liked, ok := events[0].(DishLikedEvent)
		require.True(suite.T(), ok)
		assert.Equal(suite.T(), 5, liked.LikesCount)
		assert.Equal(suite.T(), suite.otherID, liked.UserID)

		require.NoError(suite.T(), d.ApplyLikeToggle(suite.otherID, LikeActionUnliked, 4))
		events = d.Events()
		require.Len(suite.T(), events, 1)
		assert.Equal(suite.T(), EventDishUnliked, events[0].EventName())
	})

	suite.Run("NegativeCount_ShouldBeRejected", func() {
		d := Reconstruct(uuid.New(), "幻の卵ネギ", suite.ownerID, suite.ingredients, 0, timeZero)

		err := d.ApplyLikeToggle(suite.otherID, LikeActionUnliked, -1)

		assert.ErrorIs(suite.T(), err, ErrNegativeLikesCount)
		assert.Equal(suite.T(), 0, d.LikesCount())
		assert.Empty(suite.T(), d.Events())
	})
}

func (suite *DishTestSuite) TestMarkDeleted() {
	d := Reconstruct(uuid.New(), "謎の卵ネギ", suite.ownerID, suite.ingredients, 0, timeZero)

	assert.ErrorIs(suite.T(), d.MarkDeleted(suite.otherID), ErrNotDishOwner)
	require.NoError(suite.T(), d.MarkDeleted(suite.ownerID))

	events := d.Events()
	require.Len(suite.T(), events, 1)
	assert.Equal(suite.T(), EventDishDeleted, events[0].EventName())
}

var timeZero = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestDishSuite(t *testing.T) {
	suite.Run(t, new(DishTestSuite))
}
