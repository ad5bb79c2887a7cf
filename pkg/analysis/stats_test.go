package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

func TestComputeStats(t *testing.T) {
	turns := []meeting.Sentence{
		{SpeakerName: "Alice", StartTime: meeting.Seconds(0), EndTime: meeting.Seconds(60)},
		{SpeakerName: "Bob", StartTime: meeting.Seconds(60), EndTime: meeting.Seconds(90)},
	}

	stats := ComputeStats(turns)
	require.Len(t, stats.SpeakerMinutes, 2)
	assert.Equal(t, 1.0, stats.SpeakerMinutes["Alice"])
	assert.Equal(t, 0.5, stats.SpeakerMinutes["Bob"])
	assert.Equal(t, 1.5, stats.TotalDurationMinutes)
}

func TestComputeStats_AccumulatesAcrossTurns(t *testing.T) {
	turns := []meeting.Sentence{
		{SpeakerName: "Alice", StartTime: meeting.Seconds(0), EndTime: meeting.Seconds(30)},
		{SpeakerName: "Bob", StartTime: meeting.Seconds(30), EndTime: meeting.Seconds(60)},
		{SpeakerName: "Alice", StartTime: meeting.Seconds(60), EndTime: meeting.Seconds(90)},
	}

	stats := ComputeStats(turns)
	assert.Equal(t, 1.0, stats.SpeakerMinutes["Alice"])
	assert.Equal(t, 0.5, stats.SpeakerMinutes["Bob"])
}

func TestComputeStats_NegativeDurationCountsAsZero(t *testing.T) {
	turns := []meeting.Sentence{
		{SpeakerName: "Alice", StartTime: meeting.Seconds(100), EndTime: meeting.Seconds(40)},
		{SpeakerName: "Alice", StartTime: meeting.Seconds(100), EndTime: meeting.Seconds(130)},
	}

	stats := ComputeStats(turns)
	assert.Equal(t, 0.5, stats.SpeakerMinutes["Alice"])
	assert.Equal(t, 0.5, stats.TotalDurationMinutes)
}

func TestComputeStats_SkipsTurnsWithMissingTimestamps(t *testing.T) {
	turns := []meeting.Sentence{
		{SpeakerName: "Alice", StartTime: nil, EndTime: meeting.Seconds(30)},
		{SpeakerName: "Alice", StartTime: meeting.Seconds(30), EndTime: nil},
		{SpeakerName: "Bob", StartTime: meeting.Seconds(0), EndTime: meeting.Seconds(30)},
	}

	stats := ComputeStats(turns)
	require.Len(t, stats.SpeakerMinutes, 1)
	assert.Equal(t, 0.5, stats.SpeakerMinutes["Bob"])
	assert.Equal(t, 0.5, stats.TotalDurationMinutes)
}

func TestComputeStats_EmptySpeakerBucketsAsUnknown(t *testing.T) {
	turns := []meeting.Sentence{
		{SpeakerName: "", StartTime: meeting.Seconds(0), EndTime: meeting.Seconds(60)},
		{SpeakerName: "", StartTime: meeting.Seconds(60), EndTime: meeting.Seconds(120)},
	}

	stats := ComputeStats(turns)
	require.Len(t, stats.SpeakerMinutes, 1)
	assert.Equal(t, 2.0, stats.SpeakerMinutes["Unknown"])
}

func TestComputeStats_RoundsHalfAwayFromZero(t *testing.T) {
	// 7.5 seconds = 0.125 minutes, rounds up to 0.13
	turns := []meeting.Sentence{
		{SpeakerName: "Alice", StartTime: meeting.Seconds(0), EndTime: meeting.Seconds(7.5)},
	}

	stats := ComputeStats(turns)
	assert.Equal(t, 0.13, stats.SpeakerMinutes["Alice"])
	assert.Equal(t, 0.13, stats.TotalDurationMinutes)
}

func TestComputeStats_RoundsAfterSummation(t *testing.T) {
	// Two 0.2s fragments are 0.4s = 0.00666 minutes total; rounding per
	// fragment first would lose the contribution entirely.
	turns := []meeting.Sentence{
		{SpeakerName: "Alice", StartTime: meeting.Seconds(0), EndTime: meeting.Seconds(0.2)},
		{SpeakerName: "Alice", StartTime: meeting.Seconds(1), EndTime: meeting.Seconds(1.2)},
		{SpeakerName: "Alice", StartTime: meeting.Seconds(2), EndTime: meeting.Seconds(2.3)},
	}

	stats := ComputeStats(turns)
	// 0.7s = 0.01166 minutes -> 0.01
	assert.Equal(t, 0.01, stats.SpeakerMinutes["Alice"])
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.NotNil(t, stats.SpeakerMinutes)
	assert.Empty(t, stats.SpeakerMinutes)
	assert.Equal(t, 0.0, stats.TotalDurationMinutes)
}
