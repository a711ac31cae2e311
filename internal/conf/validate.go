// conf/validate.go range and enum validation for the closed configuration set.
package conf

import (
	"fmt"
	"strings"
)

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidateSettings checks every section of Settings against its documented
// range/enum constraints, accumulating every violation found rather than
// failing on the first one.
func ValidateSettings(s *Settings) error {
	var errs []error

	errs = append(errs, validateAudioSettings(s)...)
	errs = append(errs, validateVADSettings(s)...)
	errs = append(errs, validateFrontendSettings(s)...)
	errs = append(errs, validateDecoderSettings(s)...)
	errs = append(errs, validateTimelineSettings(s)...)
	errs = append(errs, validateLanguageLockSettings(s)...)
	errs = append(errs, validateQueueSettings(s)...)

	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%d configuration error(s): %s", len(errs), strings.Join(msgs, "; "))
}

func validateAudioSettings(s *Settings) []error {
	var errs []error
	a := s.Audio

	if a.ChunkDurationS <= 0 {
		errs = append(errs, &ValidationError{"audio.chunk_duration_s", a.ChunkDurationS, "must be positive"})
	}
	if a.OverlapDurationS < 0 {
		errs = append(errs, &ValidationError{"audio.overlap_duration_s", a.OverlapDurationS, "must be non-negative"})
	}
	if a.OverlapDurationS >= a.ChunkDurationS {
		errs = append(errs, &ValidationError{"audio.overlap_duration_s", a.OverlapDurationS, "must be less than chunk_duration_s"})
	}
	if a.ChunkSize <= 0 {
		errs = append(errs, &ValidationError{"audio.chunk_size", a.ChunkSize, "must be positive"})
	}
	if a.NoiseCalibSecs <= 0 {
		errs = append(errs, &ValidationError{"audio.noise_calib_secs", a.NoiseCalibSecs, "must be positive"})
	}
	if a.RMSMargin < 0 {
		errs = append(errs, &ValidationError{"audio.rms_margin", a.RMSMargin, "must be non-negative"})
	}
	return errs
}

func validateVADSettings(s *Settings) []error {
	var errs []error
	v := s.VAD

	if v.Mode != "fast" && v.Mode != "accurate" {
		errs = append(errs, &ValidationError{"vad.mode", v.Mode, "must be one of: fast, accurate"})
	}
	if v.ZCRMin < 0 || v.ZCRMin > 1 {
		errs = append(errs, &ValidationError{"vad.zcr_min", v.ZCRMin, "must be between 0 and 1"})
	}
	if v.ZCRMax < 0 || v.ZCRMax > 1 {
		errs = append(errs, &ValidationError{"vad.zcr_max", v.ZCRMax, "must be between 0 and 1"})
	}
	if v.ZCRMax <= v.ZCRMin {
		errs = append(errs, &ValidationError{"vad.zcr_max", v.ZCRMax, "must be greater than zcr_min"})
	}
	if v.EntropyMax < 0 || v.EntropyMax > 1 {
		errs = append(errs, &ValidationError{"vad.entropy_max", v.EntropyMax, "must be between 0 and 1"})
	}
	return errs
}

func validateFrontendSettings(s *Settings) []error {
	var errs []error
	f := s.Frontend

	if f.MelBins <= 0 {
		errs = append(errs, &ValidationError{"frontend.mel_bins", f.MelBins, "must be positive"})
	}
	if f.MaxFrames <= 0 {
		errs = append(errs, &ValidationError{"frontend.max_frames", f.MaxFrames, "must be positive"})
	}
	if f.LFRM <= 0 {
		errs = append(errs, &ValidationError{"frontend.lfr_m", f.LFRM, "must be positive"})
	}
	if f.LFRN <= 0 {
		errs = append(errs, &ValidationError{"frontend.lfr_n", f.LFRN, "must be positive"})
	}
	if f.RKNNInputLen <= 0 {
		errs = append(errs, &ValidationError{"frontend.rknn_input_len", f.RKNNInputLen, "must be positive"})
	}
	if f.SpeechScale < 0 || f.SpeechScale > 1 {
		errs = append(errs, &ValidationError{"frontend.speech_scale", f.SpeechScale, "must be between 0 and 1"})
	}
	switch f.Language {
	case "auto", "zh", "en", "yue", "ja", "ko", "nospeech":
	default:
		errs = append(errs, &ValidationError{"frontend.language", f.Language, "must be one of: auto, zh, en, yue, ja, ko, nospeech"})
	}
	if f.ModelPath == "" {
		errs = append(errs, &ValidationError{"frontend.model_path", f.ModelPath, "must not be empty"})
	}
	if f.TokenizerPath == "" {
		errs = append(errs, &ValidationError{"frontend.tokenizer_path", f.TokenizerPath, "must not be empty"})
	}
	return errs
}

func validateDecoderSettings(s *Settings) []error {
	var errs []error
	d := s.Decoder

	if d.MinChars < 0 {
		errs = append(errs, &ValidationError{"decoder.min_chars", d.MinChars, "must be non-negative"})
	}
	if d.SimilarityThreshold < 0 || d.SimilarityThreshold > 1 {
		errs = append(errs, &ValidationError{"decoder.similarity_threshold", d.SimilarityThreshold, "must be between 0 and 1"})
	}
	if d.DuplicateCooldownS < 0 {
		errs = append(errs, &ValidationError{"decoder.duplicate_cooldown_s", d.DuplicateCooldownS, "must be non-negative"})
	}
	if d.ConfidenceThreshold < 0 || d.ConfidenceThreshold > 1 {
		errs = append(errs, &ValidationError{"decoder.confidence_threshold", d.ConfidenceThreshold, "must be between 0 and 1"})
	}
	if d.OverlapWordCount < 0 {
		errs = append(errs, &ValidationError{"decoder.overlap_word_count", d.OverlapWordCount, "must be non-negative"})
	}
	return errs
}

func validateTimelineSettings(s *Settings) []error {
	var errs []error
	t := s.Timeline

	if t.OverlapConfidence < 0 || t.OverlapConfidence > 1 {
		errs = append(errs, &ValidationError{"timeline.overlap_confidence", t.OverlapConfidence, "must be between 0 and 1"})
	}
	if t.MinWordConfidence < 0 || t.MinWordConfidence > 1 {
		errs = append(errs, &ValidationError{"timeline.min_word_confidence", t.MinWordConfidence, "must be between 0 and 1"})
	}
	return errs
}

func validateLanguageLockSettings(s *Settings) []error {
	var errs []error
	l := s.LanguageLock

	if l.WarmupS < 0 {
		errs = append(errs, &ValidationError{"language_lock.warmup_s", l.WarmupS, "must be non-negative"})
	}
	if l.MinSamples <= 0 {
		errs = append(errs, &ValidationError{"language_lock.min_samples", l.MinSamples, "must be positive"})
	}
	if l.Confidence < 0 || l.Confidence > 1 {
		errs = append(errs, &ValidationError{"language_lock.confidence", l.Confidence, "must be between 0 and 1"})
	}
	return errs
}

func validateQueueSettings(s *Settings) []error {
	var errs []error
	q := s.Queues

	if q.Preprocess <= 0 {
		errs = append(errs, &ValidationError{"queues.preprocess", q.Preprocess, "must be positive"})
	}
	if q.Inference <= 0 {
		errs = append(errs, &ValidationError{"queues.inference", q.Inference, "must be positive"})
	}
	if q.Postprocess <= 0 {
		errs = append(errs, &ValidationError{"queues.postprocess", q.Postprocess, "must be positive"})
	}
	if q.Emit <= 0 {
		errs = append(errs, &ValidationError{"queues.emit", q.Emit, "must be positive"})
	}
	return errs
}
