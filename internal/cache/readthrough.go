package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const (
	AllProductsKey = "allProducts"
	AllCoursesKey  = "allCourses"
)

// Single entries are namespaced because sessions share the keyspace under
// bare user ids.
func ProductKey(id string) string { return "product:" + id }

func CourseKey(id string) string { return "course:" + id }

// Catalog is the read-through cache for public catalog reads. Entries never
// expire.
type Catalog struct {
	client *redis.Client
}

func NewCatalog(client *redis.Client) *Catalog {
	return &Catalog{client: client}
}

// ReadThrough serves key from the cache, or calls load and stores the result.
// Cache failures never fail the read.
func ReadThrough[T any](ctx context.Context, c *Catalog, key string, load func(context.Context) (T, error)) (T, error) {
	var value T

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		decodeErr := json.Unmarshal(raw, &value)
		if decodeErr == nil {
			return value, nil
		}
		slog.Warn("cache entry undecodable, reloading", "key", key, "error", decodeErr)
	case !errors.Is(err, redis.Nil):
		slog.Warn("cache read failed, falling back to store", "key", key, "error", err)
	}

	value, err = load(ctx)
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache entry unencodable", "key", key, "error", err)
		return value, nil
	}

	if err := c.client.Set(ctx, key, payload, 0).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}

	return value, nil
}

func (c *Catalog) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate catalog keys: %w", err)
	}
	return nil
}
