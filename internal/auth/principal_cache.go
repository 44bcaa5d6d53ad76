package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PrincipalCache caches authenticated users between requests so the
// middleware does not hit the store on every call. Misses are cheap;
// staleness is bounded by the TTL and by explicit invalidation on user
// mutation.
type PrincipalCache interface {
	Get(ctx context.Context, id string) (*domain.User, bool)
	Set(ctx context.Context, user *domain.User)
	Invalidate(ctx context.Context, id string)
}

const principalTTL = 60 * time.Second

type redisPrincipalCache struct {
	client *redis.Client
}

// NewRedisPrincipalCache wraps a redis client as a PrincipalCache.
func NewRedisPrincipalCache(client *redis.Client) PrincipalCache {
	return &redisPrincipalCache{client: client}
}

func cacheKey(id string) string {
	return "principal:" + id
}

func (c *redisPrincipalCache) Get(ctx context.Context, id string) (*domain.User, bool) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (c *redisPrincipalCache) Set(ctx context.Context, user *domain.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(user.ID), raw, principalTTL).Err()
}

func (c *redisPrincipalCache) Invalidate(ctx context.Context, id string) {
	_ = c.client.Del(ctx, cacheKey(id)).Err()
}
