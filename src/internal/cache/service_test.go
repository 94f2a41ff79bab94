package cache

import (
	"context"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"polling-svc/src/internal/session"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Configuration{
		Cache: config.CacheConfig{
			SessionExpirationMinutes: 30,
			ResultKeyPrefix:          "poll_result:",
			ResultListKey:            "poll_result:list",
			ResultExpirationMinutes:  5,
		},
	}
	return NewCacheService(client, cfg), mr
}

func TestSessionRoundTrip(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	s := &session.Session{
		SessionID:    "s1",
		UserID:       "u1",
		IsActive:     true,
		ExpiresAt:    time.Now().Add(time.Hour),
		LastActiveAt: time.Now(),
	}
	require.NoError(t, svc.CacheActiveSession(ctx, s))
	assert.True(t, mr.Exists("session:u1:s1"))

	got, err := svc.GetActiveSession(ctx, SessionKey("u1", "s1"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, svc.UpdateSessionActivity(ctx, SessionKey("u1", "s1")))
	assert.True(t, mr.TTL("session:u1:s1") > 0)

	require.NoError(t, svc.DeleteActiveSession(ctx, "u1", "s1"))
	got, err = svc.GetActiveSession(ctx, SessionKey("u1", "s1"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheActiveSessionSkipsExpired(t *testing.T) {
	svc, mr := newTestService(t)

	s := &session.Session{
		SessionID:    "s1",
		UserID:       "u1",
		IsActive:     true,
		ExpiresAt:    time.Now().Add(-time.Minute),
		LastActiveAt: time.Now(),
	}
	require.NoError(t, svc.CacheActiveSession(context.Background(), s))
	assert.False(t, mr.Exists("session:u1:s1"))
}

func TestGetActiveSessionCorruptValue(t *testing.T) {
	svc, mr := newTestService(t)
	require.NoError(t, mr.Set("session:u1:s1", "not-json"))

	got, err := svc.GetActiveSession(context.Background(), "session:u1:s1")
	assert.ErrorIs(t, err, models.ErrRedisGet)
	assert.Nil(t, got)
}

func TestPollResultInvalidation(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	result := &models.PollResult{
		Name:       "poll-1",
		PollTitle:  "Fruit",
		TotalVotes: 2,
		Options:    []models.OptionResult{{OptionText: "Banana", VoteCount: 2, Percentage: 100}},
	}
	require.NoError(t, svc.SavePollResult(ctx, result))
	require.NoError(t, svc.SaveResultList(ctx, []models.PollResultSummary{{Name: "poll-1", PollTitle: "Fruit", TotalVotes: 2}}))

	cached, err := svc.GetPollResult(ctx, "poll-1")
	require.NoError(t, err)
	assert.Equal(t, result, cached)

	list, err := svc.GetResultList(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.InvalidatePollResult(ctx, "poll-1"))
	assert.False(t, mr.Exists("poll_result:poll-1"))
	assert.False(t, mr.Exists("poll_result:list"))

	cached, err = svc.GetPollResult(ctx, "poll-1")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestDeleteUserSessions(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	for _, key := range []string{"session:u1:a", "session:u1:b", "session:u2:a"} {
		require.NoError(t, mr.Set(key, "{}"))
	}

	require.NoError(t, svc.DeleteUserSessions(ctx, "u1"))
	assert.False(t, mr.Exists("session:u1:a"))
	assert.False(t, mr.Exists("session:u1:b"))
	assert.True(t, mr.Exists("session:u2:a"))

	require.NoError(t, svc.DeleteUserSessions(ctx, "nobody"))
}
