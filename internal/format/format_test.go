package format

import (
	"testing"

	"github.com/orangepi5/micasr/internal/decode"
	"github.com/stretchr/testify/assert"
)

func TestDisplayTextIncludesLanguageTag(t *testing.T) {
	f := New(Config{ShowLanguage: true})
	result := &decode.Result{Language: "English"}
	assert.Equal(t, "hello [English]", f.DisplayText("hello", result))
}

func TestDisplayTextOmitsDisabledSections(t *testing.T) {
	f := New(Config{ShowEmotions: false, ShowEvents: false, ShowLanguage: false})
	result := &decode.Result{Emotion: "HAPPY", AudioEvents: []string{"APPLAUSE"}, Language: "English"}
	assert.Equal(t, "hello", f.DisplayText("hello", result))
}

func TestDisplayTextIncludesEmotionAndEventEmoji(t *testing.T) {
	f := New(Config{ShowEmotions: true, ShowEvents: true})
	result := &decode.Result{Emotion: "HAPPY", AudioEvents: []string{"APPLAUSE"}}
	assert.Equal(t, "😊 👏 hello", f.DisplayText("hello", result))
}

func TestCheckMetadataFilterBlocksBGM(t *testing.T) {
	f := New(Config{FilterBGM: true})
	result := &decode.Result{AudioEvents: []string{"BGM"}}
	filtered, reason := f.CheckMetadataFilter(result)
	assert.True(t, filtered)
	assert.NotEmpty(t, reason)
}

func TestCheckMetadataFilterBlocksConfiguredEvent(t *testing.T) {
	f := New(Config{FilterEvents: []string{"COUGH"}})
	result := &decode.Result{AudioEvents: []string{"COUGH"}}
	filtered, _ := f.CheckMetadataFilter(result)
	assert.True(t, filtered)
}

func TestCheckMetadataFilterPassesClean(t *testing.T) {
	f := New(Config{FilterBGM: true})
	result := &decode.Result{AudioEvents: []string{"SPEECH"}}
	filtered, reason := f.CheckMetadataFilter(result)
	assert.False(t, filtered)
	assert.Empty(t, reason)
}
