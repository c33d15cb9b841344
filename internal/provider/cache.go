package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/mealplanner/backend/internal/models"
)

// CachedProvider wraps a Provider with a short-TTL redis cache so repeated
// selections for the same (slot, diet) do not hammer the upstream API. Cache
// failures are logged and the call falls through to the wrapped provider.
type CachedProvider struct {
	inner Provider
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner Provider, redisClient *redis.Client, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		redis: redisClient,
		ttl:   ttl,
	}
}

func (c *CachedProvider) Name() string { return c.inner.Name() }

func (c *CachedProvider) Search(ctx context.Context, category models.MealSlot, dietType string, maxResults int) ([]CandidateMeal, error) {
	key := fmt.Sprintf("provider_search:%s:%s:%s:%d", c.inner.Name(), category, dietType, maxResults)

	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cached []CandidateMeal
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		log.Printf("provider cache read failed for %s: %v", key, err)
	}

	results, err := c.inner.Search(ctx, category, dietType, maxResults)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(results); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Printf("provider cache write failed for %s: %v", key, err)
		}
	}

	return results, nil
}
