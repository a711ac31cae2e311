package timeline

import (
	"testing"

	"github.com/orangepi5/micasr/internal/decode"
	"github.com/stretchr/testify/assert"
)

func TestMergeChunkEmitsNewWords(t *testing.T) {
	m := New(DefaultConfig())
	words := []decode.Word{
		{Text: "hello", StartMs: 0, EndMs: 200, Confidence: 0.9},
		{Text: "world", StartMs: 200, EndMs: 400, Confidence: 0.9},
	}
	out := m.MergeChunk(words, 0)
	assert.Len(t, out, 2)
	assert.Equal(t, "hello world", m.GetTimelineText())
}

func TestMergeChunkSkipsAlreadyEmitted(t *testing.T) {
	m := New(DefaultConfig())
	m.MergeChunk([]decode.Word{{Text: "hello", StartMs: 0, EndMs: 200, Confidence: 0.9}}, 0)

	out := m.MergeChunk([]decode.Word{{Text: "hello", StartMs: 0, EndMs: 200, Confidence: 0.9}}, 0)
	assert.Empty(t, out)
}

func TestMergeChunkDropsLowConfidenceWords(t *testing.T) {
	m := New(DefaultConfig())
	out := m.MergeChunk([]decode.Word{{Text: "um", StartMs: 0, EndMs: 100, Confidence: 0.1}}, 0)
	assert.Empty(t, out)
	assert.Empty(t, m.GetTimelineText())
}

func TestMergeChunkReplacesOverlapWithHigherConfidence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OverlapConfidenceThreshold = 0.3
	m := New(cfg)
	m.MergeChunk([]decode.Word{{Text: "helo", StartMs: 0, EndMs: 300, Confidence: 0.55}}, 0)

	out := m.MergeChunk([]decode.Word{{Text: "hello", StartMs: 0, EndMs: 300, Confidence: 0.95}}, 100)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "hello", out[0].Text)
	}
	assert.Equal(t, "hello", m.GetTimelineText())
}

func TestGetTimelineStatsReflectsConfidenceRange(t *testing.T) {
	m := New(DefaultConfig())
	m.MergeChunk([]decode.Word{
		{Text: "a", StartMs: 0, EndMs: 100, Confidence: 0.5},
		{Text: "b", StartMs: 100, EndMs: 200, Confidence: 0.9},
	}, 0)

	stats := m.GetTimelineStats()
	assert.Equal(t, 2, stats.WordCount)
	assert.Equal(t, 0.5, stats.MinConfidence)
	assert.Equal(t, 0.9, stats.MaxConfidence)
}

func TestResetClearsTimeline(t *testing.T) {
	m := New(DefaultConfig())
	m.MergeChunk([]decode.Word{{Text: "a", StartMs: 0, EndMs: 100, Confidence: 0.9}}, 0)
	m.Reset()
	assert.Empty(t, m.GetTimelineText())
	assert.Equal(t, Stats{}, m.GetTimelineStats())
}
