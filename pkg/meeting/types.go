// Package meeting provides the meeting transcript data model: diarized
// sentences, turn merging, plain-text flattening, and transcript file parsing.
package meeting

// Sentence is a single speaker-attributed utterance with timestamps, as
// received from a transcript source. Merged turns share the same shape:
// a turn is a maximal contiguous run of same-speaker sentences.
type Sentence struct {
	Index       int      `json:"index"`
	SpeakerName string   `json:"speaker_name"`
	Text        string   `json:"text"`
	RawText     string   `json:"raw_text"`
	StartTime   *float64 `json:"start_time"` // seconds; nil when absent or unparsable
	EndTime     *float64 `json:"end_time"`   // seconds; may equal StartTime
}

// Speaker identifies a participant as reported by the transcript source.
type Speaker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Transcript is a diarized meeting transcript. Only Sentences and Title are
// consumed by the analysis core; the remaining fields are carried through
// from the transcript source for display and storage.
type Transcript struct {
	TranscriptID   string     `json:"transcript_id,omitempty"`
	Title          string     `json:"title,omitempty"`
	MeetingLink    string     `json:"meeting_link,omitempty"`
	Date           string     `json:"date,omitempty"`
	Duration       float64    `json:"duration,omitempty"`
	Speakers       []Speaker  `json:"speakers,omitempty"`
	Sentences      []Sentence `json:"sentences"`
	OrganizerEmail string     `json:"organizer_email,omitempty"`
}

// Agenda is the planned content of a meeting, supplied by the caller.
type Agenda struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Seconds returns a pointer to v, for building Sentence timestamps.
func Seconds(v float64) *float64 {
	return &v
}
