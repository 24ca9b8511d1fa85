package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient caches recent news-article reads so generation requests with
// news enrichment enabled don't hammer postgres for the same industry over
// and over. Cache misses and redis failures fall through to the DB.
type RedisClient struct {
	inner *redis.Client
}

const articleCacheTTL = 5 * time.Minute

var ctx = context.Background()

func GetRedisClient() *RedisClient {
	return &RedisClient{
		inner: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
			Password: os.Getenv("REDIS_PASSWD"),
			DB:       0, // use default DB
		})}
}

// ArticleCacheKey includes every parameter shaping the result set, a read
// for one limit must never be served for another.
func ArticleCacheKey(industry string, topic string, limit int) string {
	return fmt.Sprintf("articles_%s_%s_%d", industry, topic, limit)
}

// GetCachedArticles returns the cached payload for an industry/topic/limit
// triple, or false when absent or unreadable.
func (r RedisClient) GetCachedArticles(industry string, topic string, limit int, out interface{}) bool {
	raw, err := r.inner.Get(ctx, ArticleCacheKey(industry, topic, limit)).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false
	}
	return true
}

func (r RedisClient) SetCachedArticles(industry string, topic string, limit int, articles interface{}) error {
	encoded, err := json.Marshal(articles)
	if err != nil {
		return err
	}
	return r.inner.Set(ctx, ArticleCacheKey(industry, topic, limit), string(encoded), articleCacheTTL).Err()
}

const oauthStateTTL = 10 * time.Minute

func oauthStateKey(state string) string {
	return "oauth_state_" + state
}

// SetOAuthState remembers which user started an OAuth dance. The state value
// expires so an abandoned flow can't be replayed later.
func (r RedisClient) SetOAuthState(state string, userID string) error {
	return r.inner.Set(ctx, oauthStateKey(state), userID, oauthStateTTL).Err()
}

// GetOAuthState resolves a callback state back to the initiating user and
// consumes it. Returns false on unknown or expired state.
func (r RedisClient) GetOAuthState(state string) (string, bool) {
	userID, err := r.inner.Get(ctx, oauthStateKey(state)).Result()
	if err != nil {
		return "", false
	}
	r.inner.Del(ctx, oauthStateKey(state))
	return userID, true
}
