package decode

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const stitchOverlapSimilarity = 0.7

// Similarity returns a 0..1 likeness score between two strings derived
// from their Levenshtein edit distance, normalized by the longer length.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	dist := matchr.Levenshtein(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// chunkTail is the trailing window of words retained from the previous
// emitted chunk, used to detect and resolve overlap at chunk boundaries.
type chunkTail struct {
	words      []string
	confidence float64
}

// StoreTail captures the trailing overlapWordCount words of text (or all
// of them if fewer) for boundary comparison against the next chunk.
func StoreTail(text string, confidence float64, overlapWordCount int) chunkTail {
	words := strings.Fields(text)
	if len(words) > overlapWordCount {
		words = words[len(words)-overlapWordCount:]
	}
	return chunkTail{words: words, confidence: confidence}
}

// ApplyConfidenceStitching compares the previous chunk's tail against the
// head of the current chunk's text. When a high-similarity overlap is
// found, the overlapping head words are trimmed from currentText if the
// previous tail's confidence was below confidenceThreshold (the current
// chunk is trusted over an uncertain previous tail); otherwise the text
// is returned unchanged.
func ApplyConfidenceStitching(currentText string, currentConfidence float64, prev chunkTail, confidenceThreshold float64) string {
	if len(prev.words) == 0 {
		return currentText
	}

	currentWords := strings.Fields(currentText)
	if len(currentWords) == 0 {
		return currentText
	}

	maxOverlap := len(prev.words)
	if len(currentWords) < maxOverlap {
		maxOverlap = len(currentWords)
	}

	for overlapLen := maxOverlap; overlapLen >= 1; overlapLen-- {
		prevTail := strings.ToLower(strings.Join(prev.words[len(prev.words)-overlapLen:], " "))
		currentHead := strings.ToLower(strings.Join(currentWords[:overlapLen], " "))

		if Similarity(prevTail, currentHead) >= stitchOverlapSimilarity {
			if prev.confidence < confidenceThreshold {
				return strings.Join(currentWords[overlapLen:], " ")
			}
			return currentText
		}
	}

	return currentText
}
