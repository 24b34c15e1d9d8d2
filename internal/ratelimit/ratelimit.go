package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether another attempt identified by key may proceed.
// When it may not, the returned duration tells the caller how long to wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// Config defines a fixed budget of attempts per window
type Config struct {
	Limit  int
	Window time.Duration
	Prefix string
}

func (c Config) normalized() Config {
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Prefix == "" {
		c.Prefix = "tarpaulin:login:"
	}
	return c
}

// New returns a redis backed limiter when client is set, an in-process one
// otherwise. A non-positive limit disables limiting.
func New(client *redis.Client, cfg Config) Limiter {
	cfg = cfg.normalized()
	if cfg.Limit <= 0 {
		return noopLimiter{}
	}
	if client != nil {
		return NewRedisLimiter(client, cfg)
	}
	return NewMemoryLimiter(cfg)
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return true, 0, nil
}

// RedisLimiter counts attempts with INCR/EXPIRE so every replica shares one budget
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
}

func NewRedisLimiter(client *redis.Client, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg.normalized()}
}

func (l *RedisLimiter) key(key string) string {
	return fmt.Sprintf("%s%s", l.cfg.Prefix, key)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.key(key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr error: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.cfg.Window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire error: %w", err)
		}
	}
	if count <= int64(l.cfg.Limit) {
		return true, 0, nil
	}

	ttl, err := l.client.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit ttl error: %w", err)
	}
	if ttl <= 0 {
		return false, l.cfg.Window, nil
	}
	return false, ttl, nil
}

// HealthCheck verifies redis connectivity
func (l *RedisLimiter) HealthCheck(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("rate limit store health check failed: %w", err)
	}
	return nil
}

// MemoryLimiter keeps one token bucket per key in process
type MemoryLimiter struct {
	cfg Config

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg.normalized(),
		buckets: make(map[string]*bucket),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	if key == "" {
		key = "unknown"
	}

	now := time.Now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		every := l.cfg.Window / time.Duration(l.cfg.Limit)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), l.cfg.Limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.cleanupLocked(now)
	l.mu.Unlock()

	if b.limiter.AllowN(now, 1) {
		return true, 0, nil
	}

	r := b.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	if wait <= 0 {
		wait = time.Second
	}
	return false, wait, nil
}

func (l *MemoryLimiter) cleanupLocked(now time.Time) {
	cutoff := now.Add(-2 * l.cfg.Window)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
