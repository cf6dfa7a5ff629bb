package memory

import (
	"context"
	"testing"
	"time"

	"github.com/nutridash/dashboard/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewCacheRepository(0)
	repo.now = func() time.Time { return now }

	_, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	value := []byte("hello")
	require.NoError(t, repo.Set(ctx, "k", value, time.Minute))
	value[0] = 'j'

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got[0] = 'y'
	again, _ := repo.Get(ctx, "k")
	assert.Equal(t, []byte("hello"), again)

	ok, err := repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("Expiry", func(t *testing.T) {
		now = now.Add(2 * time.Minute)

		_, err := repo.Get(ctx, "k")
		assert.ErrorIs(t, err, outbound.ErrCacheMiss)
		ok, _ := repo.Exists(ctx, "k")
		assert.False(t, ok)

		assert.Equal(t, 1, repo.Len())
		assert.Equal(t, 1, repo.Purge())
		assert.Equal(t, 0, repo.Len())
	})

	t.Run("ZeroTTLUsesDefault", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "d", []byte("x"), 0))
		now = now.Add(DefaultTTL - time.Second)
		ok, _ := repo.Exists(ctx, "d")
		assert.True(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "d"))
		ok, _ := repo.Exists(ctx, "d")
		assert.False(t, ok)
	})
}

func TestCacheRepository_Sweeper(t *testing.T) {
	repo := NewCacheRepository(5 * time.Millisecond)
	defer repo.Close()

	require.NoError(t, repo.Set(context.Background(), "k", []byte("v"), time.Millisecond))

	assert.Eventually(t, func() bool { return repo.Len() == 0 }, time.Second, 5*time.Millisecond)
	repo.Close()
}
