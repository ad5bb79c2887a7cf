// Package store persists per-user meeting records and their cached analyses.
// Two implementations are provided: an in-memory store for single-process
// deployments and tests, and a Redis-backed store for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/otherjamesbrown/diviz/pkg/analysis"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

// MeetingRecord is a stored meeting: its identity, schedule, agenda, and —
// once analyzed — the transcript and cached analysis.
type MeetingRecord struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	MeetingCode     string              `json:"meeting_code"`
	StartTime       *time.Time          `json:"start_time,omitempty"`
	DurationMinutes *float64            `json:"duration_minutes,omitempty"`
	Agenda          meeting.Agenda      `json:"agenda"`
	Transcript      *meeting.Transcript `json:"transcript,omitempty"`
	Analysis        *analysis.Analysis  `json:"analysis,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// MeetingStore persists meeting records keyed by user ID and meeting code.
// Save is an upsert: it creates the record on first write and replaces the
// stored fields on subsequent writes, preserving ID and CreatedAt.
type MeetingStore interface {
	Save(ctx context.Context, record MeetingRecord) (MeetingRecord, error)
	Get(ctx context.Context, userID, meetingCode string) (MeetingRecord, error)
	List(ctx context.Context, userID string) ([]MeetingRecord, error)
	Delete(ctx context.Context, userID, meetingCode string) error
}
