package analysis

import (
	"context"
	"time"

	"github.com/otherjamesbrown/diviz/pkg/logging"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

// feedbackFailedPrefix marks a feedback string produced from a generation
// failure rather than from the model.
const feedbackFailedPrefix = "Feedback generation failed: "

// Analysis is the full result for one transcript: participation stats plus
// agenda coverage feedback. FeedbackError carries the underlying error text
// when feedback generation failed; Stats is always populated.
type Analysis struct {
	Stats         Stats  `json:"stats"`
	Feedback      string `json:"feedback"`
	FeedbackError string `json:"feedback_error,omitempty"`
}

// Analyzer runs the full analysis pipeline over a transcript: merge
// consecutive sentences into turns, compute participation stats, and generate
// agenda coverage feedback.
type Analyzer struct {
	generator FeedbackGenerator
	logger    logging.Logger
}

// NewAnalyzer creates an analyzer. A nil logger falls back to a no-op logger.
func NewAnalyzer(generator FeedbackGenerator, logger logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Analyzer{generator: generator, logger: logger}
}

// Analyze produces an Analysis for the transcript against the agenda.
//
// Stats are computed locally and always succeed. Feedback generation is
// best-effort: a failure never fails the analysis, it is recorded in the
// Feedback text and FeedbackError field instead, so stats remain usable when
// the model is down.
func (a *Analyzer) Analyze(ctx context.Context, agenda meeting.Agenda, transcript *meeting.Transcript) *Analysis {
	if transcript == nil {
		transcript = &meeting.Transcript{}
	}

	turns := meeting.MergeConsecutive(transcript.Sentences)

	result := &Analysis{
		Stats: ComputeStats(turns),
	}

	flattened := meeting.AsPlainText(&meeting.Transcript{
		Title:     transcript.Title,
		Sentences: turns,
	})

	start := time.Now()
	feedback, err := a.generator.Generate(ctx, agenda, flattened)
	feedbackDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		a.logger.Warn("feedback generation failed",
			logging.F("transcript_id", transcript.TranscriptID),
			logging.Err(err))
		analysesTotal.WithLabelValues("feedback_error").Inc()

		result.Feedback = feedbackFailedPrefix + err.Error()
		result.FeedbackError = err.Error()
		return result
	}

	analysesTotal.WithLabelValues("ok").Inc()
	result.Feedback = feedback

	return result
}
