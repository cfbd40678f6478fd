// Package cache keeps computed totals in Redis so repeated reads of the same
// immutable version skip re-evaluation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-orca/internal/engine"
)

// Totals wraps Redis helpers for cached evaluation results. A nil client
// disables caching without changing call sites.
type Totals struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTotals constructs a totals cache.
func NewTotals(client *redis.Client, ttl time.Duration) *Totals {
	return &Totals{client: client, ttl: ttl}
}

// Key builds the cache key for one document version. Versions are immutable,
// so the key never needs invalidation, only expiry.
func Key(documentID string, version int32) string {
	return fmt.Sprintf("orca:totals:%s:%d", documentID, version)
}

// Get unmarshals a cached result. It reports whether the key existed.
func (c *Totals) Get(ctx context.Context, key string) (engine.Result, bool, error) {
	var res engine.Result
	if c == nil || c.client == nil || key == "" {
		return res, false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return res, false, nil
		}
		return res, false, err
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return res, false, err
	}
	return res, true, nil
}

// Set serialises the result as JSON and stores it with the configured TTL.
func (c *Totals) Set(ctx context.Context, key string, res engine.Result) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
