package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/model"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type countingStore struct {
	reads    int
	products map[string]model.Product
}

func (s *countingStore) find(id string) func(context.Context) (model.Product, error) {
	return func(context.Context) (model.Product, error) {
		s.reads++
		p, ok := s.products[id]
		if !ok {
			return model.Product{}, model.ErrProductNotFound
		}
		return p, nil
	}
}

func TestReadThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("miss loads once then serves from cache", func(t *testing.T) {
		mr, client := newRedis(t)
		catalog := NewCatalog(client)
		store := &countingStore{products: map[string]model.Product{"P1": {ID: "P1", ParentTitle: "Golf"}}}

		first, err := ReadThrough(ctx, catalog, "P1", store.find("P1"))
		require.NoError(t, err)
		assert.Equal(t, "Golf", first.ParentTitle)
		assert.Equal(t, 1, store.reads)
		assert.True(t, mr.Exists("P1"))
		assert.Zero(t, mr.TTL("P1"), "catalog entries never expire")

		second, err := ReadThrough(ctx, catalog, "P1", store.find("P1"))
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, store.reads)
	})

	t.Run("load error is returned and not cached", func(t *testing.T) {
		mr, client := newRedis(t)
		catalog := NewCatalog(client)
		store := &countingStore{products: map[string]model.Product{}}

		_, err := ReadThrough(ctx, catalog, "missing", store.find("missing"))
		assert.ErrorIs(t, err, model.ErrProductNotFound)
		assert.False(t, mr.Exists("missing"))
	})

	t.Run("aggregate key", func(t *testing.T) {
		_, client := newRedis(t)
		catalog := NewCatalog(client)
		loads := 0
		load := func(context.Context) ([]model.Product, error) {
			loads++
			return []model.Product{{ID: "P1"}, {ID: "P2"}}, nil
		}

		for range 3 {
			products, err := ReadThrough(ctx, catalog, AllProductsKey, load)
			require.NoError(t, err)
			assert.Len(t, products, 2)
		}
		assert.Equal(t, 1, loads)
	})

	t.Run("cache outage falls through to the store", func(t *testing.T) {
		mr, client := newRedis(t)
		catalog := NewCatalog(client)
		mr.Close()

		store := &countingStore{products: map[string]model.Product{"P1": {ID: "P1"}}}
		p, err := ReadThrough(ctx, catalog, "P1", store.find("P1"))
		require.NoError(t, err)
		assert.Equal(t, "P1", p.ID)
		assert.Equal(t, 1, store.reads)
	})

	t.Run("invalidate drops keys", func(t *testing.T) {
		mr, client := newRedis(t)
		catalog := NewCatalog(client)
		require.NoError(t, mr.Set("P1", "{}"))
		require.NoError(t, mr.Set(AllProductsKey, "[]"))

		require.NoError(t, catalog.Invalidate(ctx, "P1", AllProductsKey))
		assert.False(t, mr.Exists("P1"))
		assert.False(t, mr.Exists(AllProductsKey))
	})
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	user := model.User{ID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: "secret-hash", Role: model.RoleUser}

	t.Run("put and get without password hash", func(t *testing.T) {
		mr, client := newRedis(t)
		store := NewSessionStore(client, 72*time.Hour)

		require.NoError(t, store.Put(ctx, user))
		assert.Equal(t, 72*time.Hour, mr.TTL("u1"))

		raw, err := mr.Get("u1")
		require.NoError(t, err)
		assert.NotContains(t, raw, "secret-hash")

		got, err := store.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Ann", got.Name)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("get miss", func(t *testing.T) {
		_, client := newRedis(t)
		store := NewSessionStore(client, time.Hour)

		_, err := store.Get(ctx, "nobody")
		assert.True(t, errors.Is(err, ErrMiss))
	})

	t.Run("replace keeps ttl and never resurrects", func(t *testing.T) {
		mr, client := newRedis(t)
		store := NewSessionStore(client, time.Hour)

		ok, err := store.Replace(ctx, user)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, mr.Exists("u1"))

		require.NoError(t, store.Put(ctx, user))
		mr.FastForward(20 * time.Minute)

		renamed := user
		renamed.Name = "Anna"
		ok, err = store.Replace(ctx, renamed)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 40*time.Minute, mr.TTL("u1"))

		got, err := store.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Anna", got.Name)
	})

	t.Run("extend and delete", func(t *testing.T) {
		mr, client := newRedis(t)
		store := NewSessionStore(client, time.Hour)
		require.NoError(t, store.Put(ctx, user))
		mr.FastForward(30 * time.Minute)

		ok, err := store.Extend(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, time.Hour, mr.TTL("u1"))

		require.NoError(t, store.Delete(ctx, "u1"))
		ok, err = store.Extend(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0", 10*time.Millisecond)
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())

	t.Run("gives up when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := Connect(ctx, "redis://127.0.0.1:1/0", 10*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
