package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisc "github.com/notevault/core/internal/pkg/redis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLedger is a fixed-window ledger backed by Redis INCR, usable across
// server replicas. Window buckets are aligned to the epoch, same shape as
// the transport rate limiter.
type RedisLedger struct {
	rc       *redisc.Client
	maxCalls int
	window   time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewRedisLedger(rc *redisc.Client, maxCalls int, window time.Duration, log *zap.Logger) *RedisLedger {
	return &RedisLedger{rc: rc, maxCalls: maxCalls, window: window, now: time.Now, log: log}
}

func (l *RedisLedger) bucket(now time.Time) (int64, time.Time) {
	idx := now.UnixMilli() / l.window.Milliseconds()
	start := time.UnixMilli(idx * l.window.Milliseconds())
	return idx, start
}

func (l *RedisLedger) key(userID string, bucket int64) string {
	return fmt.Sprintf("nv:ai:quota:%s:%d", userID, bucket)
}

// TryAdmit implements Ledger. INCR is atomic, so concurrent callers for the
// same user cannot both take the last slot.
func (l *RedisLedger) TryAdmit(ctx context.Context, userID string) (Admission, error) {
	now := l.now()
	bucket, start := l.bucket(now)
	key := l.key(userID, bucket)

	count, err := l.rc.Raw().Incr(ctx, key).Result()
	if err != nil {
		return Admission{}, err
	}
	if count == 1 {
		// Grace second so the bucket outlives its window for Usage reads.
		// A failed expiry leaves a counter that never resets; worth a log
		// line even though the next bucket takes over on schedule.
		if err := l.rc.Raw().PExpire(ctx, key, l.window+time.Second).Err(); err != nil {
			l.log.Warn("quota bucket expiry failed", zap.String("key", key), zap.Error(err))
		}
	}

	if count > int64(l.maxCalls) {
		return Admission{
			Admitted:   false,
			RetryAfter: start.Add(l.window).Sub(now),
		}, nil
	}
	return Admission{Admitted: true}, nil
}

// Usage implements Ledger. Denied attempts inflate the raw counter past the
// limit, so the reported count is clamped.
func (l *RedisLedger) Usage(ctx context.Context, userID string) (UsageSnapshot, error) {
	now := l.now()
	bucket, start := l.bucket(now)

	count, err := l.rc.Raw().Get(ctx, l.key(userID, bucket)).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return UsageSnapshot{}, err
		}
		count = 0
	}
	if count > l.maxCalls {
		count = l.maxCalls
	}
	return UsageSnapshot{
		WindowStart: start,
		Count:       count,
		Limit:       l.maxCalls,
		Remaining:   l.maxCalls - count,
	}, nil
}
