// Package review orchestrates meeting reviews: it resolves a meeting's
// transcript, runs the analysis pipeline, and caches results in the meeting
// store so repeat reviews are served without re-analysis.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/otherjamesbrown/diviz/pkg/analysis"
	dverrors "github.com/otherjamesbrown/diviz/pkg/errors"
	"github.com/otherjamesbrown/diviz/pkg/logging"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
	"github.com/otherjamesbrown/diviz/pkg/store"
)

// TranscriptSource resolves a meeting code to its diarized transcript.
// Implementations wrap external transcript providers.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, meetingCode string) (*meeting.Transcript, error)
}

// Result is the outcome of a review: the analysis plus whether it was served
// from the cache.
type Result struct {
	Analysis *analysis.Analysis
	Cached   bool
}

// CreateMeetingParams are the caller-supplied fields for registering a
// meeting ahead of its review.
type CreateMeetingParams struct {
	MeetingCode string
	StartTime   *time.Time
	EndTime     *time.Time
	Agenda      meeting.Agenda
}

// Service ties together the transcript source, the analyzer, and the meeting
// store.
type Service struct {
	source   TranscriptSource
	analyzer *analysis.Analyzer
	store    store.MeetingStore
	logger   logging.Logger
}

// NewService creates a review service. A nil logger falls back to a no-op
// logger.
func NewService(source TranscriptSource, analyzer *analysis.Analyzer, meetingStore store.MeetingStore, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		source:   source,
		analyzer: analyzer,
		store:    meetingStore,
		logger:   logger,
	}
}

// Review analyzes the meeting identified by meetingCode for the given user.
//
// If the user already has a stored analysis for this meeting it is returned
// as-is with Cached set; the transcript source is not contacted and the
// supplied agenda is ignored in favor of the one the analysis was produced
// with. Otherwise the transcript is fetched, analyzed against the agenda,
// and the result stored before returning.
func (s *Service) Review(ctx context.Context, userID, meetingCode string, agenda meeting.Agenda) (*Result, error) {
	existing, err := s.store.Get(ctx, userID, meetingCode)
	switch {
	case err == nil && existing.Analysis != nil:
		cacheHitsTotal.Inc()
		s.logger.Debug("serving cached analysis",
			logging.F("user_id", userID),
			logging.F("meeting_code", meetingCode))
		return &Result{Analysis: existing.Analysis, Cached: true}, nil
	case err != nil && !dverrors.IsNotFound(err):
		return nil, err
	}

	cacheMissesTotal.Inc()

	transcript, err := s.source.FetchTranscript(ctx, meetingCode)
	if err != nil {
		// A code that matches no transcript stays NotFound; everything else
		// is a source outage.
		if dverrors.IsNotFound(err) {
			return nil, fmt.Errorf("fetch transcript for %q: %w", meetingCode, err)
		}
		return nil, fmt.Errorf("%w: fetch transcript for %q: %v", dverrors.ErrUnavailable, meetingCode, err)
	}

	// A pre-registered meeting contributes its agenda (when the caller did
	// not supply one) and keeps its wall-clock fields.
	if agenda.Title == "" && agenda.Description == "" {
		agenda = existing.Agenda
	}

	record := store.MeetingRecord{
		UserID:          userID,
		MeetingCode:     meetingCode,
		StartTime:       existing.StartTime,
		DurationMinutes: existing.DurationMinutes,
		Agenda:          agenda,
		Transcript:      transcript,
	}

	// Persist the fetched transcript before analysis so the record exists
	// even if feedback generation is slow or the process dies mid-analysis.
	if _, err := s.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("store transcript: %w", err)
	}

	result := s.analyzer.Analyze(ctx, agenda, transcript)

	record.Analysis = result
	if _, err := s.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}

	s.logger.Info("meeting analyzed",
		logging.F("user_id", userID),
		logging.F("meeting_code", meetingCode),
		logging.F("speakers", len(result.Stats.SpeakerMinutes)))

	return &Result{Analysis: result}, nil
}

// AnalyzeTranscript analyzes a caller-supplied transcript directly, without
// going through the transcript source, and stores the result. An empty
// meetingCode falls back to the transcript ID, then to a generated UUID, so
// the analysis is always retrievable later.
func (s *Service) AnalyzeTranscript(ctx context.Context, userID string, agenda meeting.Agenda, transcript *meeting.Transcript, meetingCode string) (*analysis.Analysis, string, error) {
	if transcript == nil {
		return nil, "", fmt.Errorf("%w: transcript is required", dverrors.ErrValidation)
	}

	if meetingCode == "" {
		meetingCode = transcript.TranscriptID
	}
	if meetingCode == "" {
		meetingCode = uuid.NewString()
	}

	result := s.analyzer.Analyze(ctx, agenda, transcript)

	if _, err := s.store.Save(ctx, store.MeetingRecord{
		UserID:      userID,
		MeetingCode: meetingCode,
		Agenda:      agenda,
		Transcript:  transcript,
		Analysis:    result,
	}); err != nil {
		return nil, "", fmt.Errorf("store analysis: %w", err)
	}

	return result, meetingCode, nil
}

// CreateMeeting registers (or updates) a meeting for later review. Duration
// is derived from the wall-clock start and end times when both are present;
// otherwise it is left unset.
func (s *Service) CreateMeeting(ctx context.Context, userID string, params CreateMeetingParams) (store.MeetingRecord, error) {
	if params.MeetingCode == "" {
		return store.MeetingRecord{}, fmt.Errorf("%w: meeting code is required", dverrors.ErrValidation)
	}

	var durationMinutes *float64
	if params.StartTime != nil && params.EndTime != nil {
		minutes := params.EndTime.Sub(*params.StartTime).Minutes()
		if minutes < 0 {
			minutes = 0
		}
		durationMinutes = &minutes
	}

	return s.store.Save(ctx, store.MeetingRecord{
		UserID:          userID,
		MeetingCode:     params.MeetingCode,
		StartTime:       params.StartTime,
		DurationMinutes: durationMinutes,
		Agenda:          params.Agenda,
	})
}

// ListMeetings returns the user's meetings, most recently updated first.
func (s *Service) ListMeetings(ctx context.Context, userID string) ([]store.MeetingRecord, error) {
	return s.store.List(ctx, userID)
}

// GetMeeting returns one meeting record, or ErrNotFound.
func (s *Service) GetMeeting(ctx context.Context, userID, meetingCode string) (store.MeetingRecord, error) {
	return s.store.Get(ctx, userID, meetingCode)
}

// DeleteMeeting removes one meeting record, or returns ErrNotFound.
func (s *Service) DeleteMeeting(ctx context.Context, userID, meetingCode string) error {
	return s.store.Delete(ctx, userID, meetingCode)
}
