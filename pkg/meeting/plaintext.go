package meeting

import "strings"

// AsPlainText flattens a transcript into a human-readable text block suitable
// for embedding in a prompt: an optional "# Title" heading followed by one
// "Speaker: text" line per sentence. Sentences without a speaker are emitted
// as bare text. Sentence text falls back to raw text when empty.
func AsPlainText(t *Transcript) string {
	if t == nil {
		return ""
	}

	parts := make([]string, 0, len(t.Sentences)+1)
	if t.Title != "" {
		parts = append(parts, "# "+t.Title)
	}
	for _, s := range t.Sentences {
		text := firstNonEmpty(s.Text, s.RawText)
		if s.SpeakerName != "" {
			parts = append(parts, s.SpeakerName+": "+text)
		} else {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
