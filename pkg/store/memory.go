package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	dverrors "github.com/otherjamesbrown/diviz/pkg/errors"
)

// MemoryStore is an in-memory MeetingStore. Safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex

	// userID -> meetingCode -> record
	meetings map[string]map[string]MeetingRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		meetings: make(map[string]map[string]MeetingRecord),
	}
}

// Save upserts a record under (UserID, MeetingCode). On first write the
// record gets a fresh ID and CreatedAt; later writes preserve both and only
// refresh UpdatedAt. Returns the stored record.
func (s *MemoryStore) Save(_ context.Context, record MeetingRecord) (MeetingRecord, error) {
	if record.UserID == "" {
		return MeetingRecord{}, fmt.Errorf("%w: user ID is required", dverrors.ErrValidation)
	}
	if record.MeetingCode == "" {
		return MeetingRecord{}, fmt.Errorf("%w: meeting code is required", dverrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.meetings[record.UserID]
	if !ok {
		bucket = make(map[string]MeetingRecord)
		s.meetings[record.UserID] = bucket
	}

	now := time.Now().UTC()
	if existing, ok := bucket[record.MeetingCode]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.ID = uuid.NewString()
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	bucket[record.MeetingCode] = record

	return record, nil
}

// Get returns the record for (userID, meetingCode), or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, userID, meetingCode string) (MeetingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.meetings[userID][meetingCode]
	if !ok {
		return MeetingRecord{}, fmt.Errorf("%w: meeting %q", dverrors.ErrNotFound, meetingCode)
	}

	return record, nil
}

// List returns all of a user's records, most recently updated first.
func (s *MemoryStore) List(_ context.Context, userID string) ([]MeetingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.meetings[userID]
	records := make([]MeetingRecord, 0, len(bucket))
	for _, record := range bucket {
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	return records, nil
}

// Delete removes the record for (userID, meetingCode), or returns ErrNotFound.
// A user's bucket is removed once its last meeting is deleted.
func (s *MemoryStore) Delete(_ context.Context, userID, meetingCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.meetings[userID]
	if !ok {
		return fmt.Errorf("%w: meeting %q", dverrors.ErrNotFound, meetingCode)
	}
	if _, ok := bucket[meetingCode]; !ok {
		return fmt.Errorf("%w: meeting %q", dverrors.ErrNotFound, meetingCode)
	}

	delete(bucket, meetingCode)
	if len(bucket) == 0 {
		delete(s.meetings, userID)
	}

	return nil
}
