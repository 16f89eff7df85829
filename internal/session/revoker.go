// Package session tracks session tokens revoked by logout before they expire.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/signdesk-server/internal/model"
)

var (
	_ model.SessionRevoker = (*MemoryRevoker)(nil)
	_ model.SessionRevoker = (*RedisRevoker)(nil)
)

// MemoryRevoker keeps revoked token IDs in memory (single instance only).
type MemoryRevoker struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

// NewMemoryRevoker builds an in-memory revoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Revoke marks a token as revoked for ttl.
func (r *MemoryRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, expiry := range r.tokens {
		if now.After(expiry) {
			delete(r.tokens, id)
		}
	}
	r.tokens[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked checks if the token is revoked.
func (r *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, ok := r.tokens[tokenID]
	if !ok {
		return false, nil
	}
	if r.now().After(expiry) {
		delete(r.tokens, tokenID)
		return false, nil
	}
	return true, nil
}

const redisTimeout = 3 * time.Second

// RedisRevoker stores revoked token IDs in Redis with a TTL.
type RedisRevoker struct {
	client redis.UniversalClient
}

// NewRedisRevoker builds a Redis-backed revoker.
func NewRedisRevoker(addr, password string) *RedisRevoker {
	return NewRedisRevokerWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	}))
}

// NewRedisRevokerWithClient wraps an existing client.
func NewRedisRevokerWithClient(client redis.UniversalClient) *RedisRevoker {
	return &RedisRevoker{client: client}
}

// Ping checks the Redis connection.
func (r *RedisRevoker) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Revoke marks a token as revoked for ttl.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := r.client.Set(ctx, revocationKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked checks if the token is revoked.
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	res, err := r.client.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return res > 0, nil
}

// Close releases the client.
func (r *RedisRevoker) Close() error {
	return r.client.Close()
}

func revocationKey(tokenID string) string {
	return "session:revoked:" + tokenID
}
