package revocations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	setKey   string
	setTTL   time.Duration
	setCalls int
	setErr   error

	exists    int64
	existsErr error
	existsKey string
}

func (f *fakeRedis) Set(_ context.Context, key string, _ any, ttl time.Duration) *redis.StatusCmd {
	f.setCalls++
	f.setKey, f.setTTL = key, ttl
	return redis.NewStatusResult("OK", f.setErr)
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	f.existsKey = keys[0]
	return redis.NewIntResult(f.exists, f.existsErr)
}

func TestRedisRevoke(t *testing.T) {
	f := &fakeRedis{}
	r := &RedisRepository{rdb: f}

	require.NoError(t, r.Revoke(context.Background(), "abc", time.Minute))
	assert.Equal(t, "revoked:abc", f.setKey)
	assert.Equal(t, time.Minute, f.setTTL)
}

func TestRedisRevoke_NonPositiveTTL(t *testing.T) {
	f := &fakeRedis{}
	r := &RedisRepository{rdb: f}

	require.NoError(t, r.Revoke(context.Background(), "abc", 0))
	assert.Zero(t, f.setCalls)
}

func TestRedisRevoke_Error(t *testing.T) {
	boom := errors.New("boom")
	r := &RedisRepository{rdb: &fakeRedis{setErr: boom}}

	err := r.Revoke(context.Background(), "abc", time.Minute)
	assert.ErrorIs(t, err, boom)
}

func TestRedisIsRevoked(t *testing.T) {
	f := &fakeRedis{exists: 1}
	r := &RedisRepository{rdb: f}

	ok, err := r.IsRevoked(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "revoked:abc", f.existsKey)

	f.exists = 0
	ok, err = r.IsRevoked(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisIsRevoked_Error(t *testing.T) {
	boom := errors.New("boom")
	r := &RedisRepository{rdb: &fakeRedis{existsErr: boom}}

	_, err := r.IsRevoked(context.Background(), "abc")
	assert.ErrorIs(t, err, boom)
}
