package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BlockDuration is how long an IP stays blocked after suspicious activity.
const BlockDuration = time.Hour

type RateLimiter struct {
	client *redis.Client
}

type RateLimitConfig struct {
	Requests int           // Number of requests allowed
	Window   time.Duration // Time window
}

var (
	// BIN lookups - one per keystroke past six digits, so fairly generous
	LookupRateLimit = RateLimitConfig{
		Requests: 60,
		Window:   time.Minute,
	}

	// Admin endpoints - BIN range maintenance and audit trail
	AdminRateLimit = RateLimitConfig{
		Requests: 20,
		Window:   time.Minute,
	}

	GeneralRateLimit = RateLimitConfig{
		Requests: 100,
		Window:   time.Minute,
	}

	// Rejected client keys tolerated from one IP before it is blocked
	SuspiciousRateLimit = RateLimitConfig{
		Requests: 10,
		Window:   15 * time.Minute,
	}
)

type RateLimitInfo struct {
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	Reset      time.Time     `json:"reset"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	Allowed    bool          `json:"allowed"`
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{
		client: redisClient,
	}
}

// CheckLimit records a request against key and reports whether it is allowed.
func (rl *RateLimiter) CheckLimit(ctx context.Context, key string, config RateLimitConfig) (bool, error) {
	info, err := rl.CheckLimitWithInfo(ctx, key, config)
	if err != nil {
		return false, err
	}
	return info.Allowed, nil
}

// CheckLimitWithInfo records a request in a sliding window kept as a sorted
// set scored by arrival time in milliseconds.
func (rl *RateLimiter) CheckLimitWithInfo(ctx context.Context, key string, config RateLimitConfig) (*RateLimitInfo, error) {
	now := time.Now()
	windowStart := now.Add(-config.Window)

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixMilli()))
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, key, config.Window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(countCmd.Val())
	info := &RateLimitInfo{
		Limit:     config.Requests,
		Remaining: max(config.Requests-count-1, 0),
		Reset:     now.Add(config.Window),
		Allowed:   count < config.Requests,
	}

	if info.Allowed {
		return info, nil
	}

	// Retry once the oldest request leaves the window.
	info.RetryAfter = config.Window
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		info.RetryAfter = time.UnixMilli(int64(oldest[0].Score)).Add(config.Window).Sub(now)
	}
	info.RetryAfter = max(info.RetryAfter, time.Second)
	info.Reset = now.Add(info.RetryAfter)

	return info, nil
}

func blockKey(key string) string {
	return "blocked:" + key
}

// Block rejects key for duration.
func (rl *RateLimiter) Block(ctx context.Context, key string, duration time.Duration) error {
	if err := rl.client.Set(ctx, blockKey(key), "1", duration).Err(); err != nil {
		return fmt.Errorf("block %s: %w", key, err)
	}
	return nil
}

// BlockedFor returns how long key stays blocked, zero when it is not.
func (rl *RateLimiter) BlockedFor(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := rl.client.TTL(ctx, blockKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("block status %s: %w", key, err)
	}
	// TTL reports -2 for a missing key and -1 for one without expiry.
	if ttl == -2 {
		return 0, nil
	}
	if ttl < 0 {
		return BlockDuration, nil
	}
	return ttl, nil
}

// IsBlocked reports whether key is currently blocked.
func (rl *RateLimiter) IsBlocked(ctx context.Context, key string) (bool, error) {
	ttl, err := rl.BlockedFor(ctx, key)
	return ttl > 0, err
}
