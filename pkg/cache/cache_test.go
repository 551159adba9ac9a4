package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/cache"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newStore(t *testing.T, ttl time.Duration) (*cache.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.New(rdb, ttl), mr
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, time.Minute)

	var got []item
	assert.False(t, s.Get(ctx, "products:all", &got))

	require.NoError(t, s.Set(ctx, "products:all", []item{{1, "Shirt"}}))
	require.True(t, s.Get(ctx, "products:all", &got))
	assert.Equal(t, []item{{1, "Shirt"}}, got)

	require.NoError(t, s.Del(ctx, "products:all"))
	assert.False(t, s.Get(ctx, "products:all", &got))
}

func TestEntriesExpire(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t, time.Minute)

	require.NoError(t, s.Set(ctx, "products:popular", []item{}))
	mr.FastForward(2 * time.Minute)

	var got []item
	assert.False(t, s.Get(ctx, "products:popular", &got))
}

func TestNilStoreIsAlwaysMiss(t *testing.T) {
	var s *cache.Store
	ctx := context.Background()

	var got []item
	assert.False(t, s.Get(ctx, "k", &got))
	assert.NoError(t, s.Set(ctx, "k", 1))
	assert.NoError(t, s.Del(ctx, "k"))
	assert.NoError(t, s.Bump(ctx, "gen"))
	gen, err := s.Version(ctx, "gen")
	assert.NoError(t, err)
	assert.Zero(t, gen)
	assert.NoError(t, s.Close())
}

func TestVersionStartsAtZeroAndBumps(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t, time.Minute)

	gen, err := s.Version(ctx, "products:gen")
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, s.Bump(ctx, "products:gen"))
	require.NoError(t, s.Bump(ctx, "products:gen"))
	gen, err = s.Version(ctx, "products:gen")
	require.NoError(t, err)
	assert.EqualValues(t, 2, gen)
	assert.Equal(t, "products:all@2", cache.Versioned("products:all", gen))

	mr.Set("bad:gen", "nope")
	_, err = s.Version(ctx, "bad:gen")
	assert.Error(t, err)
}
