package decode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTokenizer struct {
	pieces map[int]string
	text   string
}

func (f *fakeTokenizer) DecodeIDs(ids []int) string {
	return f.text
}

func (f *fakeTokenizer) IDToPiece(id int) string {
	return f.pieces[id]
}

func newFakeTokenizer() *fakeTokenizer {
	return &fakeTokenizer{
		pieces: map[int]string{1: "▁hi", 2: "▁there"},
		text:   "hi there",
	}
}

func talkativeLogits() [][]float64 {
	return [][]float64{
		{-5, -5, -5, -5},
		{5, 5, -5, -5},
		{-5, -5, 5, 5},
	}
}

func baseConfig() Config {
	return Config{
		MinChars:            1,
		SimilarityThreshold: 0.9,
		DuplicateCooldown:   time.Minute,
		OverlapWordCount:    2,
	}
}

func TestDecoderDecodesSuccessfully(t *testing.T) {
	d := New(newFakeTokenizer(), baseConfig())

	result, ok := d.Decode(talkativeLogits(), 1)
	if assert.True(t, ok) {
		assert.Equal(t, "hi there", result.Text)
		assert.Len(t, result.Words, 2)
		assert.Equal(t, "hi", result.Words[0].Text)
		assert.Equal(t, "there", result.Words[1].Text)
	}
}

func TestDecoderRejectsDuplicateAudioHash(t *testing.T) {
	d := New(newFakeTokenizer(), baseConfig())

	_, ok := d.Decode(talkativeLogits(), 42)
	assert.True(t, ok)

	_, ok = d.Decode(talkativeLogits(), 42)
	assert.False(t, ok)
}

func TestDecoderRejectsBlankDominantLogits(t *testing.T) {
	d := New(newFakeTokenizer(), baseConfig())

	blankLogits := [][]float64{
		{5, 5, 5, 5},
		{-5, -5, -5, -5},
		{-5, -5, -5, -5},
	}

	_, ok := d.Decode(blankLogits, 7)
	assert.False(t, ok)
}

func TestDecoderRejectsBelowMinChars(t *testing.T) {
	cfg := baseConfig()
	cfg.MinChars = 100
	d := New(newFakeTokenizer(), cfg)

	_, ok := d.Decode(talkativeLogits(), 9)
	assert.False(t, ok)
}
