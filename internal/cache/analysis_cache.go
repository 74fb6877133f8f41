package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnalysisCache stores expensive derived results (summaries, reports) under
// opaque string keys. Expiry is supplied by the caller at write time; Get
// treats an expired-but-unswept entry as absent. Writes are last-writer-wins.
type AnalysisCache interface {
	// Get returns the stored value, or nil when the key is missing or
	// expired.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set upserts a value with an absolute expiry.
	Set(ctx context.Context, key string, value any, expiresAt time.Time) error

	// Delete removes a key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Exists reports whether a non-expired value is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// ClearExpired sweeps entries whose expiry has passed and returns the
	// number removed.
	ClearExpired(ctx context.Context) (int, error)
}

const (
	keyPrefix = "analysis:cache:"
	indexKey  = "analysis:cache:keys"
)

type entry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache creates an AnalysisCache backed by Redis. Entries are
// tracked in an index set so ClearExpired can enumerate them.
func NewRedisCache(client *redis.Client) AnalysisCache {
	return &redisCache{client: client}
}

func (c *redisCache) key(key string) string {
	return keyPrefix + key
}

func (c *redisCache) Get(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !time.Now().Before(e.ExpiresAt) {
		return nil, nil
	}
	return e.Value, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any, expiresAt time.Time) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry{Value: raw, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(key), data, 0)
	pipe.SAdd(ctx, indexKey, key)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *redisCache) Delete(ctx context.Context, key string) (bool, error) {
	deleted, err := c.client.Del(ctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	if err := c.client.SRem(ctx, indexKey, key).Err(); err != nil {
		return false, err
	}
	return deleted > 0, nil
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	value, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return value != nil, nil
}

func (c *redisCache) ClearExpired(ctx context.Context) (int, error) {
	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	removed := 0
	for _, key := range keys {
		data, err := c.client.Get(ctx, c.key(key)).Bytes()
		if err == redis.Nil {
			c.client.SRem(ctx, indexKey, key)
			continue
		}
		if err != nil {
			return removed, err
		}

		var e entry
		if err := json.Unmarshal(data, &e); err != nil || !now.Before(e.ExpiresAt) {
			if _, err := c.Delete(ctx, key); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
