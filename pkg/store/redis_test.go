package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dverrors "github.com/otherjamesbrown/diviz/pkg/errors"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

// newTestRedisStore connects to the Redis instance named by DIVIZ_REDIS_ADDR,
// skipping the test when the variable is unset.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("DIVIZ_REDIS_ADDR")
	if addr == "" {
		t.Skip("DIVIZ_REDIS_ADDR not set; skipping Redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	s, err := NewRedisStore(context.Background(), client)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return s
}

func TestRedisStore_SaveGetDelete(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	userID := "test-" + uuid.NewString()

	saved, err := s.Save(ctx, MeetingRecord{
		UserID:      userID,
		MeetingCode: "abc-defg-hij",
		Agenda:      meeting.Agenda{Title: "Sync"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := s.Get(ctx, userID, "abc-defg-hij")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "Sync", got.Agenda.Title)

	require.NoError(t, s.Delete(ctx, userID, "abc-defg-hij"))

	_, err = s.Get(ctx, userID, "abc-defg-hij")
	assert.True(t, dverrors.IsNotFound(err))
}

func TestRedisStore_ListOrdersByUpdatedAtDesc(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	userID := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_ = s.Delete(ctx, userID, "older")
		_ = s.Delete(ctx, userID, "newer")
	})

	_, err := s.Save(ctx, MeetingRecord{UserID: userID, MeetingCode: "older"})
	require.NoError(t, err)
	_, err = s.Save(ctx, MeetingRecord{UserID: userID, MeetingCode: "newer"})
	require.NoError(t, err)

	records, err := s.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].MeetingCode)
}

func TestRedisStore_DeleteNotFound(t *testing.T) {
	s := newTestRedisStore(t)

	err := s.Delete(context.Background(), "test-"+uuid.NewString(), "missing")
	assert.True(t, dverrors.IsNotFound(err))
}
