package bincache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/darisadam/cardbrand/internal/domain/brand"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "binlookup:"

// Entry is what a lookup resolved for one BIN.
type Entry struct {
	Brands             brand.Set `json:"brands"`
	IssuingCountryCode string    `json:"issuing_country_code,omitempty"`
	Source             string    `json:"source"`
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(redisClient *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: redisClient,
		ttl:    ttl,
	}
}

func key(bin string) string {
	return keyPrefix + bin
}

// Get returns the cached entry for bin. A miss reports ok=false and no error.
func (c *Cache) Get(ctx context.Context, bin string) (*Entry, bool, error) {
	raw, err := c.client.Get(ctx, key(bin)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("bin cache get failed: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Treat a corrupt entry as a miss; the next Set overwrites it.
		return nil, false, nil
	}
	if entry.Brands == nil {
		entry.Brands = brand.NewSet()
	}
	return &entry, true, nil
}

func (c *Cache) Set(ctx context.Context, bin string, entry *Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("bin cache encode failed: %w", err)
	}
	if err := c.client.Set(ctx, key(bin), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("bin cache set failed: %w", err)
	}
	return nil
}

// Invalidate drops every cached entry, e.g. after BIN ranges change.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("bin cache invalidate failed: %w", err)
		}
	}
	return iter.Err()
}
