package meeting

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// VTT parsing regular expressions
var (
	// Matches segment header: 1 "Speaker Name" (speaker_id) or just: 1 "" (0)
	vttSegmentHeaderRegex = regexp.MustCompile(`^\d+\s+"([^"]*)"(?:\s+\((\d+)\))?`)

	// Matches timestamp line: 00:00:05.579 --> 00:00:06.858
	vttTimestampRegex = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{3})\s+-->\s+(\d{2}:\d{2}:\d{2}\.\d{3})`)
)

// ParseVTT parses a WebVTT format transcript into a Transcript with one
// sentence per cue. Malformed cues are skipped rather than failing the parse.
func ParseVTT(r io.Reader) (*Transcript, error) {
	scanner := bufio.NewScanner(r)
	result := &Transcript{
		Sentences: make([]Sentence, 0),
		Speakers:  make([]Speaker, 0),
	}

	speakerSet := make(map[string]bool)

	var current *Sentence
	var lastEnd float64

	flush := func() {
		if current == nil || current.Text == "" {
			current = nil
			return
		}
		current.Index = len(result.Sentences)
		current.RawText = current.Text
		result.Sentences = append(result.Sentences, *current)
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and WEBVTT header
		if line == "" || line == "WEBVTT" {
			continue
		}

		// Try to match segment header (e.g., 1 "Speaker Name" (123))
		if matches := vttSegmentHeaderRegex.FindStringSubmatch(line); matches != nil {
			flush()

			speaker := matches[1]
			speakerID := ""
			if len(matches) > 2 {
				speakerID = matches[2]
			}

			current = &Sentence{SpeakerName: speaker}

			// Track unique speakers (skip empty speaker names)
			if speaker != "" && !speakerSet[speaker] {
				speakerSet[speaker] = true
				result.Speakers = append(result.Speakers, Speaker{ID: speakerID, Name: speaker})
			}
			continue
		}

		// Try to match timestamp line
		if matches := vttTimestampRegex.FindStringSubmatch(line); matches != nil {
			start := parseVTTTimestamp(matches[1])
			end := parseVTTTimestamp(matches[2])

			if current != nil {
				current.StartTime = Seconds(start)
				current.EndTime = Seconds(end)
			}

			if end > lastEnd {
				lastEnd = end
			}
			continue
		}

		// Must be text content
		if current != nil {
			if current.Text != "" {
				current.Text += " "
			}
			current.Text += line
		}
	}

	// Don't forget the last segment
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	result.Duration = lastEnd

	return result, nil
}

// parseVTTTimestamp parses a VTT timestamp (HH:MM:SS.mmm) to seconds.
func parseVTTTimestamp(ts string) float64 {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0
	}

	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	seconds, _ := strconv.ParseFloat(parts[2], 64)

	return float64(hours)*3600 + float64(minutes)*60 + seconds
}
