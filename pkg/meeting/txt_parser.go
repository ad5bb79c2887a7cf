package meeting

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// TXT transcript parsing regular expressions
var (
	// Matches transcript line: 0:11 : Speaker Name : Text content
	// or: 12:45 : Speaker Name (pronouns) : Text content
	txtTranscriptLineRegex = regexp.MustCompile(`^(\d+):(\d{2})\s*:\s*([^:]+?)\s*:\s*(.+)$`)
)

// ParseTXT parses a plain text transcript file.
// Format: timestamp : Speaker Name : text
//
// The format carries a single timestamp per line, so each sentence gets
// identical start and end times and contributes zero speaking duration;
// TXT input is useful for coverage feedback, not participation stats.
func ParseTXT(r io.Reader) (*Transcript, error) {
	scanner := bufio.NewScanner(r)
	result := &Transcript{
		Sentences: make([]Sentence, 0),
		Speakers:  make([]Speaker, 0),
	}

	speakerSet := make(map[string]bool)
	var lastTimestamp float64

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines
		if line == "" {
			continue
		}

		// Skip malformed lines
		matches := txtTranscriptLineRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		minutes, _ := strconv.Atoi(matches[1])
		seconds, _ := strconv.Atoi(matches[2])
		speaker := strings.TrimSpace(matches[3])
		text := strings.TrimSpace(matches[4])

		timestamp := float64(minutes*60 + seconds)

		result.Sentences = append(result.Sentences, Sentence{
			Index:       len(result.Sentences),
			SpeakerName: speaker,
			Text:        text,
			RawText:     text,
			StartTime:   Seconds(timestamp),
			EndTime:     Seconds(timestamp),
		})

		// Track unique speakers
		if !speakerSet[speaker] {
			speakerSet[speaker] = true
			result.Speakers = append(result.Speakers, Speaker{Name: speaker})
		}

		if timestamp > lastTimestamp {
			lastTimestamp = timestamp
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	result.Duration = lastTimestamp

	return result, nil
}
