package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	dverrors "github.com/otherjamesbrown/diviz/pkg/errors"
)

// Redis key layout:
//
//	diviz:meeting:{userID}:{meetingCode}  -> JSON-encoded MeetingRecord
//	diviz:meetings:{userID}               -> ZSET of meeting codes scored by UpdatedAt
const (
	redisMeetingKeyPrefix = "diviz:meeting:"
	redisIndexKeyPrefix   = "diviz:meetings:"
)

// RedisStore is a Redis-backed MeetingStore for deployments where multiple
// instances share state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given Redis client and verifies
// connectivity with a ping.
func NewRedisStore(ctx context.Context, client *redis.Client) (*RedisStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: redis ping: %v", dverrors.ErrUnavailable, err)
	}
	return &RedisStore{client: client}, nil
}

func meetingKey(userID, meetingCode string) string {
	return redisMeetingKeyPrefix + userID + ":" + meetingCode
}

func indexKey(userID string) string {
	return redisIndexKeyPrefix + userID
}

// Save upserts a record, preserving ID and CreatedAt of any existing record
// under the same (UserID, MeetingCode).
func (s *RedisStore) Save(ctx context.Context, record MeetingRecord) (MeetingRecord, error) {
	if record.UserID == "" {
		return MeetingRecord{}, fmt.Errorf("%w: user ID is required", dverrors.ErrValidation)
	}
	if record.MeetingCode == "" {
		return MeetingRecord{}, fmt.Errorf("%w: meeting code is required", dverrors.ErrValidation)
	}

	now := time.Now().UTC()

	existing, err := s.Get(ctx, record.UserID, record.MeetingCode)
	switch {
	case err == nil:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	case dverrors.IsNotFound(err):
		record.ID = uuid.NewString()
		record.CreatedAt = now
	default:
		return MeetingRecord{}, err
	}
	record.UpdatedAt = now

	payload, err := json.Marshal(record)
	if err != nil {
		return MeetingRecord{}, fmt.Errorf("marshal meeting record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, meetingKey(record.UserID, record.MeetingCode), payload, 0)
	pipe.ZAdd(ctx, indexKey(record.UserID), redis.Z{
		Score:  float64(record.UpdatedAt.UnixMilli()),
		Member: record.MeetingCode,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return MeetingRecord{}, fmt.Errorf("save meeting record: %w", err)
	}

	return record, nil
}

// Get returns the record for (userID, meetingCode), or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, userID, meetingCode string) (MeetingRecord, error) {
	payload, err := s.client.Get(ctx, meetingKey(userID, meetingCode)).Bytes()
	if err == redis.Nil {
		return MeetingRecord{}, fmt.Errorf("%w: meeting %q", dverrors.ErrNotFound, meetingCode)
	}
	if err != nil {
		return MeetingRecord{}, fmt.Errorf("get meeting record: %w", err)
	}

	var record MeetingRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return MeetingRecord{}, fmt.Errorf("unmarshal meeting record: %w", err)
	}

	return record, nil
}

// List returns all of a user's records, most recently updated first. Index
// entries whose record has gone missing are skipped.
func (s *RedisStore) List(ctx context.Context, userID string) ([]MeetingRecord, error) {
	codes, err := s.client.ZRevRange(ctx, indexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list meeting codes: %w", err)
	}

	records := make([]MeetingRecord, 0, len(codes))
	for _, code := range codes {
		record, err := s.Get(ctx, userID, code)
		if dverrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// Delete removes the record for (userID, meetingCode), or returns ErrNotFound.
func (s *RedisStore) Delete(ctx context.Context, userID, meetingCode string) error {
	removed, err := s.client.Del(ctx, meetingKey(userID, meetingCode)).Result()
	if err != nil {
		return fmt.Errorf("delete meeting record: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("%w: meeting %q", dverrors.ErrNotFound, meetingCode)
	}

	if err := s.client.ZRem(ctx, indexKey(userID), meetingCode).Err(); err != nil {
		return fmt.Errorf("remove meeting index entry: %w", err)
	}

	return nil
}
