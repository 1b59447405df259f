package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CacheRepositoryTestSuite struct {
	suite.Suite
	repo *CacheRepository
	ctx  context.Context
}

func (suite *CacheRepositoryTestSuite) SetupTest() {
	suite.repo = NewCacheRepository(0)
	suite.ctx = context.Background()
}

func (suite *CacheRepositoryTestSuite) TearDownTest() {
	suite.repo.Close()
}

func (suite *CacheRepositoryTestSuite) TestGetSet() {
	suite.Run("MissingKey_ShouldReturnCacheMiss", func() {
		_, err := suite.repo.Get(suite.ctx, "absent")
		assert.ErrorIs(suite.T(), err, outbound.ErrCacheMiss)
	})

	suite.Run("StoredValue_ShouldRoundTrip", func() {
		require.NoError(suite.T(), suite.repo.Set(suite.ctx, "k", []byte("v"), time.Minute))

		got, err := suite.repo.Get(suite.ctx, "k")
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []byte("v"), got)

		ok, err := suite.repo.Exists(suite.ctx, "k")
		require.NoError(suite.T(), err)
		assert.True(suite.T(), ok)
	})

	suite.Run("MutatingReturnedValue_ShouldNotChangeEntry", func() {
		require.NoError(suite.T(), suite.repo.Set(suite.ctx, "page", []byte("ranking"), time.Minute))

		got, err := suite.repo.Get(suite.ctx, "page")
		require.NoError(suite.T(), err)
		got[0] = 'X'

		again, err := suite.repo.Get(suite.ctx, "page")
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []byte("ranking"), again)
	})

	suite.Run("ExpiredValue_ShouldMiss", func() {
		require.NoError(suite.T(), suite.repo.Set(suite.ctx, "short", []byte("v"), time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		_, err := suite.repo.Get(suite.ctx, "short")
		assert.ErrorIs(suite.T(), err, outbound.ErrCacheMiss)
	})

	suite.Run("DeletedValue_ShouldMiss", func() {
		require.NoError(suite.T(), suite.repo.Set(suite.ctx, "gone", []byte("v"), 0))
		require.NoError(suite.T(), suite.repo.Delete(suite.ctx, "gone"))

		ok, _ := suite.repo.Exists(suite.ctx, "gone")
		assert.False(suite.T(), ok)
	})
}

func (suite *CacheRepositoryTestSuite) TestIncrement() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.repo.Increment(suite.ctx, "counter")
			assert.NoError(suite.T(), err)
		}()
	}
	wg.Wait()

	n, err := suite.repo.Increment(suite.ctx, "counter")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(51), n)
}

func TestCacheRepositorySuite(t *testing.T) {
	suite.Run(t, new(CacheRepositoryTestSuite))
}
