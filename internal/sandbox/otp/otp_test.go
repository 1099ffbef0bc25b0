package otp

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, codeDigits)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "non-digit in %q", code)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestEqual(t *testing.T) {
	stored := Hash("123456")
	assert.NotEqual(t, "123456", stored)
	assert.True(t, Equal("123456", stored))
	assert.False(t, Equal("123457", stored))
	assert.False(t, Equal("", stored))
}

func storeContract(t *testing.T, store Store, expire func()) {
	ctx := context.Background()

	_, err := store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	require.NoError(t, store.Put(ctx, "u1", Hash("111111")))
	require.NoError(t, store.Put(ctx, "u1", Hash("222222")))
	hash, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, Equal("222222", hash), "latest code wins")

	require.NoError(t, store.Delete(ctx, "u1"))
	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	_, err = store.Fail(ctx, "u1")
	assert.ErrorIs(t, err, ErrCodeNotFound, "no misses without a pending code")

	require.NoError(t, store.Put(ctx, "u1", Hash("444444")))
	for want := 1; want <= 3; want++ {
		misses, err := store.Fail(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, want, misses)
	}
	require.NoError(t, store.Put(ctx, "u1", Hash("555555")))
	misses, err := store.Fail(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, misses, "a new code starts a new count")

	require.NoError(t, store.Put(ctx, "u2", Hash("333333")))
	expire()
	_, err = store.Get(ctx, "u2")
	assert.ErrorIs(t, err, ErrCodeNotFound)
	_, err = store.Fail(ctx, "u2")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	storeContract(t, store, func() { now = now.Add(2 * time.Minute) })
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	storeContract(t, NewRedisStore(client, time.Minute), func() { mr.FastForward(2 * time.Minute) })
}
