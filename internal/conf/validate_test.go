package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Audio.ChunkDurationS = 3.0
	s.Audio.OverlapDurationS = 1.5
	s.Audio.ChunkSize = 1024
	s.Audio.NoiseCalibSecs = 1.5
	s.Audio.RMSMargin = 0.004

	s.VAD.Mode = "accurate"
	s.VAD.ZCRMin = 0.02
	s.VAD.ZCRMax = 0.35
	s.VAD.EntropyMax = 0.85

	s.Frontend.MelBins = 80
	s.Frontend.MaxFrames = 3000
	s.Frontend.LFRM = 7
	s.Frontend.LFRN = 6
	s.Frontend.RKNNInputLen = 171
	s.Frontend.SpeechScale = 0.5
	s.Frontend.Language = "auto"
	s.Frontend.ModelPath = "models/sensevoice.onnx"
	s.Frontend.TokenizerPath = "models/tokenizer.model"

	s.Decoder.SimilarityThreshold = 0.85
	s.Decoder.ConfidenceThreshold = 0.6

	s.Timeline.OverlapConfidence = 0.6
	s.Timeline.MinWordConfidence = 0.4

	s.LanguageLock.WarmupS = 10.0
	s.LanguageLock.MinSamples = 3
	s.LanguageLock.Confidence = 0.6

	s.Queues.Preprocess = 3
	s.Queues.Inference = 2
	s.Queues.Postprocess = 2
	s.Queues.Emit = 10

	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	t.Parallel()
	err := ValidateSettings(validSettings())
	assert.NoError(t, err)
}

func TestValidateSettingsRejectsBadVADMode(t *testing.T) {
	t.Parallel()
	s := validSettings()
	s.VAD.Mode = "ultra"
	err := ValidateSettings(s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vad.mode")
}

func TestValidateSettingsRejectsOverlapGEChunk(t *testing.T) {
	t.Parallel()
	s := validSettings()
	s.Audio.OverlapDurationS = s.Audio.ChunkDurationS
	err := ValidateSettings(s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "overlap_duration_s")
}

func TestValidateSettingsRejectsOutOfRangeConfidence(t *testing.T) {
	t.Parallel()
	s := validSettings()
	s.LanguageLock.Confidence = 1.5
	err := ValidateSettings(s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "language_lock.confidence")
}

func TestValidateSettingsAccumulatesMultipleErrors(t *testing.T) {
	t.Parallel()
	s := validSettings()
	s.Queues.Emit = 0
	s.Decoder.OverlapWordCount = -1
	err := ValidateSettings(s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "queues.emit")
	assert.Contains(t, err.Error(), "decoder.overlap_word_count")
}
