package webhook

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const capturePrefix = "webhook:capture:v1:"

// TokenGuard remembers processed tokens so replayed deliveries can be
// short-circuited before touching the store.
type TokenGuard interface {
	// Reserve claims the token. It reports false when the token was already
	// claimed and the reservation has not expired.
	Reserve(ctx context.Context, token string) (bool, error)
	// Release forgets the token so a later delivery can retry it.
	Release(ctx context.Context, token string) error
}

// RedisGuard keeps reservations in Redis with a TTL.
type RedisGuard struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewRedisGuard builds a Redis-backed guard.
func NewRedisGuard(cache *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{cache: cache, ttl: ttl}
}

// Reserve claims the token with SETNX.
func (g *RedisGuard) Reserve(ctx context.Context, token string) (bool, error) {
	return g.cache.SetNX(ctx, capturePrefix+token, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
}

// Release deletes the reservation.
func (g *RedisGuard) Release(ctx context.Context, token string) error {
	return g.cache.Del(ctx, capturePrefix+token).Err()
}

// MemoryGuard keeps reservations in process memory. It suits a single
// instance or tests.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryGuard builds an in-memory guard.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

// Reserve claims the token unless a live reservation exists.
func (g *MemoryGuard) Reserve(_ context.Context, token string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if expires, ok := g.seen[token]; ok && now.Before(expires) {
		return false, nil
	}
	g.seen[token] = now.Add(g.ttl)
	return true, nil
}

// Release forgets the token.
func (g *MemoryGuard) Release(_ context.Context, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, token)
	return nil
}
