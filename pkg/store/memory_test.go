package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dverrors "github.com/otherjamesbrown/diviz/pkg/errors"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	saved, err := s.Save(ctx, MeetingRecord{
		UserID:      "user-1",
		MeetingCode: "abc-defg-hij",
		Agenda:      meeting.Agenda{Title: "Sync", Description: "Weekly sync"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)

	got, err := s.Get(ctx, "user-1", "abc-defg-hij")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "Sync", got.Agenda.Title)
}

func TestMemoryStore_SaveUpsertPreservesIdentity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.Save(ctx, MeetingRecord{UserID: "u", MeetingCode: "m"})
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)

	second, err := s.Save(ctx, MeetingRecord{
		UserID:      "u",
		MeetingCode: "m",
		Agenda:      meeting.Agenda{Title: "Updated"},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, "Updated", second.Agenda.Title)
}

func TestMemoryStore_SaveValidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Save(ctx, MeetingRecord{MeetingCode: "m"})
	assert.True(t, dverrors.IsValidation(err))

	_, err = s.Save(ctx, MeetingRecord{UserID: "u"})
	assert.True(t, dverrors.IsValidation(err))
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "nobody", "nothing")
	assert.True(t, dverrors.IsNotFound(err))
}

func TestMemoryStore_UsersAreIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Save(ctx, MeetingRecord{UserID: "alice", MeetingCode: "m"})
	require.NoError(t, err)

	_, err = s.Get(ctx, "bob", "m")
	assert.True(t, dverrors.IsNotFound(err))

	records, err := s.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryStore_ListOrdersByUpdatedAtDesc(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Save(ctx, MeetingRecord{UserID: "u", MeetingCode: "older"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.Save(ctx, MeetingRecord{UserID: "u", MeetingCode: "newer"})
	require.NoError(t, err)

	records, err := s.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].MeetingCode)
	assert.Equal(t, "older", records[1].MeetingCode)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Save(ctx, MeetingRecord{UserID: "u", MeetingCode: "m"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "u", "m"))

	_, err = s.Get(ctx, "u", "m")
	assert.True(t, dverrors.IsNotFound(err))

	// Second delete reports not found
	err = s.Delete(ctx, "u", "m")
	assert.True(t, dverrors.IsNotFound(err))
}

func TestMemoryStore_DeleteUnknownUser(t *testing.T) {
	s := NewMemoryStore()

	err := s.Delete(context.Background(), "nobody", "m")
	assert.True(t, dverrors.IsNotFound(err))
}
