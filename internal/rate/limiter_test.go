package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, "test:", 2, time.Minute)
	l.now = fixedClock(time.Date(2026, 1, 1, 10, 0, 15, 0, time.UTC))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "user 1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := l.Allow(ctx, "user 1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(0), res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	// otra clave no comparte ventana
	res, err = l.Allow(ctx, "user 2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// nueva ventana
	l.now = fixedClock(time.Date(2026, 1, 1, 10, 1, 1, 0, time.UTC))
	res, err = l.Allow(ctx, "user 1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisLimiterSetsExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, "", 5, time.Minute)
	_, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	l.now = fixedClock(time.Date(2026, 1, 1, 10, 0, 30, 0, time.UTC))
	ctx := context.Background()

	res, _ := l.Allow(ctx, "a")
	assert.True(t, res.Allowed)
	res, _ = l.Allow(ctx, "a")
	assert.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, res.RetryAfter)

	res, _ = l.Allow(ctx, "b")
	assert.True(t, res.Allowed)
}
