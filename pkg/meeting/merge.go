package meeting

import "strings"

// MergeConsecutive merges consecutive sentences with the same speaker into
// single turns.
//
//   - Text fragments are concatenated with a single space.
//   - Start time is the first fragment's start time and never changes after
//     the turn opens.
//   - End time is the last fragment's end time; a fragment without an end
//     time leaves the turn's current end time in place.
//   - Index is reassigned sequentially from 0.
//
// Speaker comparison is exact and case-sensitive; an empty speaker name is a
// speaker value of its own here, not an "Unknown" bucket (that substitution
// belongs to stats aggregation). Only adjacent runs merge: the same speaker
// reappearing later starts a new turn. A nil or empty input yields an empty
// slice, never an error.
func MergeConsecutive(sentences []Sentence) []Sentence {
	merged := make([]Sentence, 0, len(sentences))
	if len(sentences) == 0 {
		return merged
	}

	type openTurn struct {
		speaker   string
		textParts []string
		rawParts  []string
		start     *float64
		end       *float64
	}

	var current *openTurn

	finalize := func() {
		if current == nil {
			return
		}
		merged = append(merged, Sentence{
			Index:       len(merged),
			SpeakerName: current.speaker,
			Text:        strings.Join(current.textParts, " "),
			RawText:     strings.Join(current.rawParts, " "),
			StartTime:   current.start,
			EndTime:     current.end,
		})
		current = nil
	}

	for _, s := range sentences {
		textPart := strings.TrimSpace(firstNonEmpty(s.Text, s.RawText))
		rawPart := strings.TrimSpace(firstNonEmpty(s.RawText, s.Text))

		if current != nil && current.speaker == s.SpeakerName {
			if textPart != "" {
				current.textParts = append(current.textParts, textPart)
			}
			if rawPart != "" {
				current.rawParts = append(current.rawParts, rawPart)
			}
			if s.EndTime != nil {
				current.end = s.EndTime
			}
			continue
		}

		finalize()
		current = &openTurn{
			speaker: s.SpeakerName,
			start:   s.StartTime,
			end:     s.EndTime,
		}
		if textPart != "" {
			current.textParts = append(current.textParts, textPart)
		}
		if rawPart != "" {
			current.rawParts = append(current.rawParts, rawPart)
		}
	}
	finalize()

	return merged
}

// firstNonEmpty returns a if it is non-empty, otherwise b.
func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
