package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMetadataTokensExtractsLanguageEmotionEventAndITN(t *testing.T) {
	text := "<|en|><|HAPPY|><|withitn|>hello there<|APPLAUSE|>"
	meta := ParseMetadataTokens(text)

	assert.Equal(t, "English", meta.Language)
	assert.Equal(t, "HAPPY", meta.Emotion)
	assert.Equal(t, []string{"APPLAUSE"}, meta.AudioEvents)
	assert.True(t, meta.HasITN)
	assert.Equal(t, "hello there", meta.Text)
	assert.Equal(t, text, meta.RawText)
}

func TestParseMetadataTokensHandlesPlainText(t *testing.T) {
	meta := ParseMetadataTokens("no tags here")
	assert.Equal(t, "no tags here", meta.Text)
	assert.Empty(t, meta.Language)
	assert.Empty(t, meta.Emotion)
	assert.Empty(t, meta.AudioEvents)
	assert.False(t, meta.HasITN)
}

func TestCountAlnumCountsOnlyLettersAndDigits(t *testing.T) {
	assert.Equal(t, 4, CountAlnum("hi 42!"))
	assert.Equal(t, 0, CountAlnum("... !!! ---"))
}
