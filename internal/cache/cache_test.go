package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
}

func TestAside_MissPopulatesThenHits(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			fetches++
			*dest = cachedThing{ID: 7, Name: "alice"}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, IdentityKey(7), &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "alice", first.Name)

	var second cachedThing
	require.NoError(t, Aside(ctx, IdentityKey(7), &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should be served from cache")
	assert.Equal(t, first, second)
}

func TestAside_InvalidateForcesRefetch(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	var dest cachedThing
	fetch := func() error {
		fetches++
		dest = cachedThing{ID: 9, Name: "bob"}
		return nil
	}

	require.NoError(t, Aside(ctx, IdentityKey(9), &dest, time.Minute, fetch))
	InvalidateIdentity(ctx, 9)
	require.NoError(t, Aside(ctx, IdentityKey(9), &dest, time.Minute, fetch))
	assert.Equal(t, 2, fetches)
}

func TestAside_NilClientAlwaysFetches(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	fetches := 0
	var dest cachedThing
	fetch := func() error {
		fetches++
		return nil
	}

	require.NoError(t, Aside(ctx, IdentityKey(1), &dest, time.Minute, fetch))
	require.NoError(t, Aside(ctx, IdentityKey(1), &dest, time.Minute, fetch))
	assert.Equal(t, 2, fetches)
}
