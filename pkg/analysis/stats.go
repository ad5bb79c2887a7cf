// Package analysis computes participation statistics and agenda coverage
// feedback for meeting transcripts, and caches the results per meeting.
package analysis

import (
	"math"

	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

// unknownSpeaker is the stats bucket for sentences without a speaker name.
const unknownSpeaker = "Unknown"

// Stats holds per-speaker participation derived from turn timestamps.
// Minutes are rounded to two decimal places.
type Stats struct {
	SpeakerMinutes       map[string]float64 `json:"speaker_minutes"`
	TotalDurationMinutes float64            `json:"total_duration_minutes"`
}

// ComputeStats aggregates speaking time per speaker from merged turns.
//
// A turn contributes max(0, end-start) seconds, so clock glitches where a
// turn ends before it starts count as zero rather than going negative. Turns
// missing either timestamp are skipped entirely. Turns without a speaker
// name accumulate under "Unknown". Rounding happens once per speaker after
// summation, so the total is the sum of unrounded per-speaker values, rounded
// independently.
func ComputeStats(turns []meeting.Sentence) Stats {
	rawSeconds := make(map[string]float64)
	var totalSeconds float64

	for _, turn := range turns {
		if turn.StartTime == nil || turn.EndTime == nil {
			continue
		}

		duration := *turn.EndTime - *turn.StartTime
		if duration < 0 {
			duration = 0
		}

		speaker := turn.SpeakerName
		if speaker == "" {
			speaker = unknownSpeaker
		}

		rawSeconds[speaker] += duration
		totalSeconds += duration
	}

	stats := Stats{SpeakerMinutes: make(map[string]float64, len(rawSeconds))}
	for speaker, seconds := range rawSeconds {
		stats.SpeakerMinutes[speaker] = roundMinutes(seconds)
	}
	stats.TotalDurationMinutes = roundMinutes(totalSeconds)

	return stats
}

// roundMinutes converts seconds to minutes rounded to two decimal places,
// half away from zero.
func roundMinutes(seconds float64) float64 {
	return math.Round(seconds/60*100) / 100
}
