package binscan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "binscan:"

// DefaultWindow is used when NewDetector is given a non-positive window.
const DefaultWindow = 10 * time.Minute

// Detector flags clients that look up far more distinct BINs than a checkout
// produces, the signature of card-testing and BIN enumeration.
type Detector struct {
	redis     *redis.Client
	threshold int64
	window    time.Duration
}

func NewDetector(redisClient *redis.Client, threshold int64, window time.Duration) *Detector {
	if window <= 0 {
		logger.Warn("Invalid BIN scan window, using default",
			zap.Duration("window", window),
			zap.Duration("default", DefaultWindow),
		)
		window = DefaultWindow
	}
	return &Detector{
		redis:     redisClient,
		threshold: threshold,
		window:    window,
	}
}

func (d *Detector) key(clientID string, now time.Time) string {
	bucket := now.UnixNano() / int64(d.window)
	return fmt.Sprintf("%s%s:%d", keyPrefix, clientID, bucket)
}

// Track records the six-digit BIN for clientID and reports whether the client
// has exceeded the distinct-BIN threshold in the current window.
func (d *Detector) Track(ctx context.Context, clientID, bin string) (bool, error) {
	if len(bin) > 6 {
		bin = bin[:6]
	}
	key := d.key(clientID, time.Now())

	pipe := d.redis.Pipeline()
	pipe.PFAdd(ctx, key, bin)
	countCmd := pipe.PFCount(ctx, key)
	pipe.Expire(ctx, key, 2*d.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("bin scan tracking failed: %w", err)
	}

	return countCmd.Val() > d.threshold, nil
}

// Monitor periodically reports clients over the threshold until ctx is done.
func (d *Detector) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Analyze(ctx)
		}
	}
}

// Analyze returns the clients currently over the threshold.
func (d *Detector) Analyze(ctx context.Context) []string {
	iter := d.redis.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()

	flagged := []string{}
	for iter.Next(ctx) {
		key := iter.Val()
		count, err := d.redis.PFCount(ctx, key).Result()
		if err != nil || count <= d.threshold {
			continue
		}

		clientID := strings.TrimPrefix(key, keyPrefix)
		if i := strings.LastIndex(clientID, ":"); i >= 0 {
			clientID = clientID[:i]
		}
		flagged = append(flagged, clientID)

		logger.Warn("Possible BIN enumeration",
			zap.String("client_id", clientID),
			zap.Int64("distinct_bins", count),
		)
	}

	if err := iter.Err(); err != nil {
		logger.Error("Failed to scan BIN lookup counters", zap.Error(err))
	}

	if len(flagged) > 10 {
		logger.Error("Large-scale BIN enumeration detected",
			zap.Int("clients", len(flagged)),
		)
	}

	return flagged
}
