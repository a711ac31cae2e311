// Package format builds the human-facing display text for a decoded
// transcription chunk and applies metadata-based output filtering
// (background music, unwanted audio events).
package format

import (
	"fmt"
	"strings"

	"github.com/orangepi5/micasr/internal/decode"
)

// Config holds the formatter's display toggles and metadata filters.
type Config struct {
	ShowEmotions bool
	ShowEvents   bool
	ShowLanguage bool
	FilterBGM    bool
	FilterEvents []string
}

// Formatter turns a decode.Result into display text and decides whether a
// chunk should be suppressed entirely based on its metadata.
type Formatter struct {
	cfg Config
}

// New constructs a Formatter.
func New(cfg Config) *Formatter {
	return &Formatter{cfg: cfg}
}

// DisplayText builds the formatted line for one result: optional emotion
// and audio-event emoji prefixes, the transcription text, and an optional
// trailing [language] tag.
func (f *Formatter) DisplayText(text string, result *decode.Result) string {
	var parts []string

	if f.cfg.ShowEmotions && result.Emotion != "" {
		if emoji, ok := decode.EmotionTags[result.Emotion]; ok && emoji != "" {
			parts = append(parts, emoji)
		}
	}

	if f.cfg.ShowEvents {
		for _, event := range result.AudioEvents {
			if emoji, ok := decode.AudioEventTags[event]; ok && emoji != "" {
				parts = append(parts, emoji)
			}
		}
	}

	parts = append(parts, text)

	if f.cfg.ShowLanguage && result.Language != "" {
		parts = append(parts, fmt.Sprintf("[%s]", result.Language))
	}

	return strings.Join(parts, " ")
}

// CheckMetadataFilter reports whether a result should be suppressed
// entirely (not just reformatted), and why.
func (f *Formatter) CheckMetadataFilter(result *decode.Result) (filtered bool, reason string) {
	if f.cfg.FilterBGM {
		for _, event := range result.AudioEvents {
			if event == "BGM" {
				return true, "Background music detected"
			}
		}
	}

	if len(f.cfg.FilterEvents) > 0 {
		for _, event := range result.AudioEvents {
			for _, blocked := range f.cfg.FilterEvents {
				if event == blocked {
					return true, fmt.Sprintf("Filtered event: %s", event)
				}
			}
		}
	}

	return false, ""
}

// Statistics renders a fixed-width summary block, mirroring the console
// report printed at the end of a session.
func Statistics(totalChunks int, avgInferenceMs float64, totalWords, errorCount int) string {
	rule := strings.Repeat("=", 50)
	lines := []string{
		rule,
		"TRANSCRIPTION STATISTICS",
		rule,
		fmt.Sprintf("Total chunks processed: %d", totalChunks),
		fmt.Sprintf("Avg inference time: %.2fms", avgInferenceMs),
		fmt.Sprintf("Total words transcribed: %d", totalWords),
		fmt.Sprintf("Errors encountered: %d", errorCount),
		rule,
	}
	return strings.Join(lines, "\n")
}
