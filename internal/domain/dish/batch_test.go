package dish

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BatchTestSuite struct {
	suite.Suite
}

func (suite *BatchTestSuite) TestGenerateNames() {
	suite.Run("ThreeIngredients_ShouldReturnDistinctNamesContainingIngredients", func() {
		// Arrange
		names := []string{"卵", "ネギ", "チーズ"}
		r := rand.New(rand.NewPCG(11, 13))

		// Act
		result, err := GenerateNames(r, names, 3)

		// Assert
		require.NoError(suite.T(), err)
		assert.NotEmpty(suite.T(), result)
		assert.LessOrEqual(suite.T(), len(result), 3)
		assertDistinct(suite.T(), result)
		for _, name := range result {
			assert.True(suite.T(), containsAny(name, names), name)
		}
	})

	suite.Run("LargeCount_ShouldStopAtAttemptBudget", func() {
		// Arrange
		names := []string{"A", "B"}
		space := possibleNames(names)

		for seed := uint64(0); seed < 20; seed++ {
			// Act
			result, err := GenerateNames(rand.New(rand.NewPCG(seed, 5)), names, 5000)

			// Assert
			require.NoError(suite.T(), err)
			assert.LessOrEqual(suite.T(), len(result), len(space))
			assertDistinct(suite.T(), result)
		}
	})

	suite.Run("InsufficientIngredients_ShouldFailBeforeGenerating", func() {
		// Act
		result, err := GenerateNames(rand.New(rand.NewPCG(1, 1)), []string{"卵"}, 3)

		// Assert
		assert.ErrorIs(suite.T(), err, ErrInsufficientIngredients)
		assert.Nil(suite.T(), result)
	})

	suite.Run("NonPositiveCount_ShouldReturnInvalidBatchSize", func() {
		for _, count := range []int{0, -1} {
			result, err := GenerateNames(rand.New(rand.NewPCG(1, 1)), []string{"卵", "ネギ"}, count)

			assert.ErrorIs(suite.T(), err, ErrInvalidBatchSize)
			assert.Nil(suite.T(), result)
		}
	})

	suite.Run("SameSeed_ShouldReturnSameOrder", func() {
		names := []string{"卵", "ネギ", "チーズ", "トマト"}

		a, errA := GenerateNames(rand.New(rand.NewPCG(3, 4)), names, 5)
		b, errB := GenerateNames(rand.New(rand.NewPCG(3, 4)), names, 5)

		require.NoError(suite.T(), errA)
		require.NoError(suite.T(), errB)
		assert.Equal(suite.T(), a, b)
	})
}

func TestBatchSuite(t *testing.T) {
	suite.Run(t, new(BatchTestSuite))
}

func assertDistinct(t assert.TestingT, names []string) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		assert.False(t, seen[n], "duplicate name %q", n)
		seen[n] = true
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
