package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/pdfengine/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationList(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	list := NewMemoryRevocationList()
	list.now = func() time.Time { return now }

	require.NoError(t, list.Add(ctx, "jti-1", time.Minute))

	revoked, err := list.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.Contains(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(time.Minute)
	revoked, err = list.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry expires with the token")

	require.NoError(t, list.Add(ctx, "jti-3", time.Hour))
	assert.Equal(t, 1, list.Len(), "expired entries are swept on add")
}

func newMiniredisList(t *testing.T) (*miniredis.Miniredis, *RedisRevocationList) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisRevocationListWithClient(client)
}

func TestRedisRevocationList(t *testing.T) {
	ctx := context.Background()

	t.Run("stores jti with ttl", func(t *testing.T) {
		mr, list := newMiniredisList(t)

		require.NoError(t, list.Add(ctx, "jti-1", time.Minute))
		assert.True(t, mr.Exists(RevokedKeyPrefix+"jti-1"))
		assert.Equal(t, time.Minute, mr.TTL(RevokedKeyPrefix+"jti-1"))

		revoked, err := list.Contains(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = list.Contains(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("expires with the token", func(t *testing.T) {
		mr, list := newMiniredisList(t)

		require.NoError(t, list.Add(ctx, "jti-short", time.Second))
		mr.FastForward(2 * time.Second)

		revoked, err := list.Contains(ctx, "jti-short")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("redis errors are returned", func(t *testing.T) {
		mr, list := newMiniredisList(t)
		mr.Close()

		_, err := list.Contains(ctx, "jti-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "revocation list: lookup jti-1")

		err = list.Add(ctx, "jti-1", time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "revocation list: add jti-1")
	})
}

func TestNewRedisRevocationList(t *testing.T) {
	t.Run("connects", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)

		list, err := NewRedisRevocationList(context.Background(), config.RedisConfig{
			Enabled: true,
			Host:    mr.Host(),
			Port:    port,
		})
		require.NoError(t, err)
		defer list.Close()

		require.NoError(t, list.Add(context.Background(), "jti", time.Minute))
		assert.True(t, mr.Exists(RevokedKeyPrefix+"jti"))
	})

	t.Run("unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)
		mr.Close()

		_, err = NewRedisRevocationList(context.Background(), config.RedisConfig{Host: mr.Host(), Port: port})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unreachable")
	})
}

func TestJWTService_RevokeWithRedis(t *testing.T) {
	ctx := context.Background()
	_, list := newMiniredisList(t)
	svc := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "pdf-engine",
	}, list)

	token, err := svc.GenerateToken("crm-admin", []string{ScopeIntegrationsWrite})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, token.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, claims))

	_, err = svc.ValidateToken(ctx, token.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
