package runstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	SummaryDate string `json:"summary_date"`
	Sent        int    `json:"sent"`
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreSaveLoad(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Load(ctx, "daily-summary")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "daily-summary", report{SummaryDate: "2026-03-14", Sent: 4}))

	data, err := store.Load(ctx, "daily-summary")
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary_date":"2026-03-14","sent":4}`, string(data))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"daily-summary"))
}

func TestRedisStoreExpires(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "rfi-deadline-check", report{Sent: 1}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "rfi-deadline-check")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	mr.Close()

	err := store.Save(context.Background(), "daily-summary", report{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreKeepsLatest(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "notification-digest", report{Sent: 1}))
	require.NoError(t, store.Save(ctx, "notification-digest", report{Sent: 2}))

	data, err := store.Load(ctx, "notification-digest")
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary_date":"","sent":2}`, string(data))

	_, err = store.Load(ctx, "approval-reminder-check")
	assert.ErrorIs(t, err, ErrNotFound)
}
