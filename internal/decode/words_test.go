package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokensToWordsSplitsOnBoundaryMarker(t *testing.T) {
	tokens := []Token{
		{Text: "▁hi", StartMs: 0, EndMs: 30, Confidence: 0.9},
		{Text: "▁there", StartMs: 30, EndMs: 90, Confidence: 0.8},
	}
	words := TokensToWords(tokens)
	if assert.Len(t, words, 2) {
		assert.Equal(t, "hi", words[0].Text)
		assert.Equal(t, "there", words[1].Text)
	}
}

func TestTokensToWordsMergesSubwordContinuations(t *testing.T) {
	tokens := []Token{
		{Text: "▁un", StartMs: 0, EndMs: 30, Confidence: 1.0},
		{Text: "believ", StartMs: 30, EndMs: 60, Confidence: 0.8},
		{Text: "able", StartMs: 60, EndMs: 90, Confidence: 0.6},
	}
	words := TokensToWords(tokens)
	if assert.Len(t, words, 1) {
		assert.Equal(t, "unbelievable", words[0].Text)
		assert.InDelta(t, 0.8, words[0].Confidence, 1e-9)
		assert.Equal(t, 0.0, words[0].StartMs)
		assert.Equal(t, 90.0, words[0].EndMs)
	}
}

func TestTokensToWordsIgnoresEmptyInput(t *testing.T) {
	assert.Empty(t, TokensToWords(nil))
}
