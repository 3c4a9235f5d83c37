package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const Key = "system:maintenance"

// Set turns the flag on or off. A zero ttl keeps it on until cleared.
func Set(ctx context.Context, redisClient *redis.Client, enabled bool, ttl time.Duration) error {
	var err error
	if enabled {
		err = redisClient.Set(ctx, Key, "true", ttl).Err()
	} else {
		err = redisClient.Del(ctx, Key).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to update maintenance flag: %w", err)
	}
	return nil
}

// Status reports whether the flag is set and for how long. The remaining
// duration is zero for an open-ended window.
func Status(ctx context.Context, redisClient *redis.Client) (bool, time.Duration, error) {
	pipe := redisClient.Pipeline()
	getCmd := pipe.Get(ctx, Key)
	ttlCmd := pipe.TTL(ctx, Key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, fmt.Errorf("failed to read maintenance flag: %w", err)
	}

	if getCmd.Val() != "true" {
		return false, 0, nil
	}
	return true, max(ttlCmd.Val(), 0), nil
}
