package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/pdfengine/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RevocationList holds the IDs of revoked tokens until they would have expired
type RevocationList interface {
	// Add revokes jti for ttl, normally the remaining token lifetime
	Add(ctx context.Context, jti string, ttl time.Duration) error
	// Contains reports whether jti is revoked
	Contains(ctx context.Context, jti string) (bool, error)
}

// RevokedKeyPrefix namespaces revoked token IDs in Redis
const RevokedKeyPrefix = "pdfengine:revoked:"

// RedisRevocationList shares revocations between instances through Redis keys that expire with the token
type RedisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList connects to Redis and checks the connection
func NewRedisRevocationList(ctx context.Context, cfg config.RedisConfig) (*RedisRevocationList, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     5,
		MaxRetries:   2,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("revocation list: redis %s unreachable: %w", cfg.Addr(), err)
	}
	return NewRedisRevocationListWithClient(client), nil
}

// NewRedisRevocationListWithClient wraps an existing client
func NewRedisRevocationListWithClient(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

// Add implements RevocationList
func (l *RedisRevocationList) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if err := l.client.Set(ctx, RevokedKeyPrefix+jti, time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("revocation list: add %s: %w", jti, err)
	}
	return nil
}

// Contains implements RevocationList
func (l *RedisRevocationList) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, RevokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("revocation list: lookup %s: %w", jti, err)
	}
	return n > 0, nil
}

// Close closes the Redis client
func (l *RedisRevocationList) Close() error {
	return l.client.Close()
}

// MemoryRevocationList keeps revocations in process memory. They are lost on
// restart and not seen by other instances.
type MemoryRevocationList struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationList creates an empty in-memory revocation list
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{expires: make(map[string]time.Time), now: time.Now}
}

// Add implements RevocationList. Expired entries are dropped on every add.
func (l *MemoryRevocationList) Add(_ context.Context, jti string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, exp := range l.expires {
		if !now.Before(exp) {
			delete(l.expires, id)
		}
	}
	l.expires[jti] = now.Add(ttl)
	return nil
}

// Contains implements RevocationList
func (l *MemoryRevocationList) Contains(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.expires[jti]
	return ok && l.now().Before(exp), nil
}

// Len returns the number of entries not yet swept
func (l *MemoryRevocationList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.expires)
}

var (
	_ RevocationList = (*RedisRevocationList)(nil)
	_ RevocationList = (*MemoryRevocationList)(nil)
)
