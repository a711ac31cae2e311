// Package timeline maintains the global, monotonic word timeline that
// chunk-level decode results are merged into, eliminating the duplicate
// words produced by overlapping audio windows.
package timeline

import (
	"sync"

	"github.com/orangepi5/micasr/internal/decode"
)

// Config holds the merger's tunable thresholds.
type Config struct {
	OverlapConfidenceThreshold float64
	MinWordConfidence          float64
	EnableConfidenceReplacement bool
}

// DefaultConfig matches the reference merger's defaults.
func DefaultConfig() Config {
	return Config{
		OverlapConfidenceThreshold:  0.6,
		MinWordConfidence:           0.4,
		EnableConfidenceReplacement: true,
	}
}

// Word is one entry of the global timeline, timestamped in global
// milliseconds rather than chunk-relative milliseconds.
type Word struct {
	Text       string
	StartMs    float64
	EndMs      float64
	Confidence float64
}

// Stats summarizes the current timeline.
type Stats struct {
	WordCount     int
	DurationMs    float64
	AvgConfidence float64
	MinConfidence float64
	MaxConfidence float64
}

// Merger folds successive chunk decode results into one global, duplicate
// free timeline using word-level timestamps.
type Merger struct {
	mu sync.Mutex

	cfg Config

	timeline   []Word
	lastEmitMs float64
}

// New constructs a Merger.
func New(cfg Config) *Merger {
	return &Merger{cfg: cfg}
}

// MergeChunk folds one chunk's words (timestamped relative to the chunk's
// own start) into the global timeline, given the chunk's global time
// offset. It returns only the newly emitted words; already-seen or
// low-confidence words are dropped, and confidently-replaced overlap words
// are applied to the timeline in place and re-emitted with the replacement.
func (m *Merger) MergeChunk(wordsWithTiming []decode.Word, chunkOffsetMs float64) []Word {
	if len(wordsWithTiming) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var newWords []Word

	for _, w := range wordsWithTiming {
		globalStartMs := chunkOffsetMs + w.StartMs
		globalEndMs := chunkOffsetMs + w.EndMs
		confidence := w.Confidence

		if confidence < m.cfg.MinWordConfidence {
			continue
		}

		// Case 1: entirely before the last emit point, already processed.
		if globalEndMs <= m.lastEmitMs {
			continue
		}

		// Case 2: spans the boundary, resolve via confidence replacement.
		if globalStartMs < m.lastEmitMs && m.lastEmitMs < globalEndMs {
			if m.cfg.EnableConfidenceReplacement {
				if replaced, ok := m.tryReplaceOverlappingWord(w.Text, globalStartMs, globalEndMs, confidence); ok {
					newWords = append(newWords, replaced)
				}
			}
			continue
		}

		// Case 3: starts after the last emit point, new content.
		if globalStartMs >= m.lastEmitMs {
			nw := Word{Text: w.Text, StartMs: globalStartMs, EndMs: globalEndMs, Confidence: confidence}
			newWords = append(newWords, nw)
			m.timeline = append(m.timeline, nw)
			if globalEndMs > m.lastEmitMs {
				m.lastEmitMs = globalEndMs
			}
		}
	}

	return newWords
}

// tryReplaceOverlappingWord scans the timeline backwards for a temporally
// overlapping word and replaces it when the new word is significantly more
// confident, matching the reference merger's threshold semantics. On
// replacement it returns the replacement word so the caller can emit it.
func (m *Merger) tryReplaceOverlappingWord(word string, startMs, endMs, confidence float64) (Word, bool) {
	for i := len(m.timeline) - 1; i >= 0; i-- {
		prev := m.timeline[i]
		if prev.StartMs < endMs && prev.EndMs > startMs {
			if confidence > prev.Confidence+m.cfg.OverlapConfidenceThreshold {
				replaced := Word{Text: word, StartMs: startMs, EndMs: endMs, Confidence: confidence}
				m.timeline[i] = replaced
				return replaced, true
			}
		}
	}
	return Word{}, false
}

// GetTimelineText joins the full timeline into one space-separated string.
func (m *Merger) GetTimelineText() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb []byte
	for i, w := range m.timeline {
		if i > 0 {
			sb = append(sb, ' ')
		}
		sb = append(sb, w.Text...)
	}
	return string(sb)
}

// GetTimelineStats reports summary statistics of the current timeline.
func (m *Merger) GetTimelineStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.timeline) == 0 {
		return Stats{}
	}

	stats := Stats{
		WordCount:     len(m.timeline),
		DurationMs:    m.lastEmitMs,
		MinConfidence: m.timeline[0].Confidence,
		MaxConfidence: m.timeline[0].Confidence,
	}
	var sum float64
	for _, w := range m.timeline {
		sum += w.Confidence
		if w.Confidence < stats.MinConfidence {
			stats.MinConfidence = w.Confidence
		}
		if w.Confidence > stats.MaxConfidence {
			stats.MaxConfidence = w.Confidence
		}
	}
	stats.AvgConfidence = sum / float64(len(m.timeline))
	return stats
}

// Reset clears the timeline, e.g. at the start of a new session.
func (m *Merger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeline = nil
	m.lastEmitMs = 0
}
