// env.go - environment variable configuration and validation.
//
// Environment variables override defaults using the same names
// upper-snake-cased; invalid values log a warning and fall back to the
// previously bound value rather than aborting startup.
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for one environment variable binding.
type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

func getEnvBindings() []envBinding {
	return []envBinding{
		{"audio.chunkdurations", "AUDIO_CHUNK_DURATION_S", validateEnvPositiveFloat},
		{"audio.overlapdurations", "AUDIO_OVERLAP_DURATION_S", validateEnvNonNegativeFloat},
		{"audio.chunksize", "AUDIO_CHUNK_SIZE", validateEnvPositiveInt},
		{"audio.noisecalibsecs", "AUDIO_NOISE_CALIB_SECS", validateEnvPositiveFloat},
		{"audio.rmsmargin", "AUDIO_RMS_MARGIN", validateEnvNonNegativeFloat},
		{"audio.device", "AUDIO_DEVICE", nil},

		{"vad.enable", "VAD_ENABLE_VAD", validateEnvBool},
		{"vad.mode", "VAD_MODE", validateEnvVadMode},
		{"vad.zcrmin", "VAD_ZCR_MIN", validateEnvUnitFloat},
		{"vad.zcrmax", "VAD_ZCR_MAX", validateEnvUnitFloat},
		{"vad.entropymax", "VAD_ENTROPY_MAX", validateEnvUnitFloat},
		{"vad.adaptivenoisefloor", "VAD_ADAPTIVE_NOISE_FLOOR", validateEnvBool},

		{"frontend.melbins", "FRONTEND_MEL_BINS", validateEnvPositiveInt},
		{"frontend.maxframes", "FRONTEND_MAX_FRAMES", validateEnvPositiveInt},
		{"frontend.lfrm", "FRONTEND_LFR_M", validateEnvPositiveInt},
		{"frontend.lfrn", "FRONTEND_LFR_N", validateEnvPositiveInt},
		{"frontend.rknninputlen", "FRONTEND_RKNN_INPUT_LEN", validateEnvPositiveInt},
		{"frontend.speechscale", "FRONTEND_SPEECH_SCALE", validateEnvUnitFloat},
		{"frontend.useitn", "FRONTEND_USE_ITN", validateEnvBool},
		{"frontend.language", "FRONTEND_LANGUAGE", validateEnvLanguage},
		{"frontend.modelpath", "FRONTEND_MODEL_PATH", validateEnvPath},
		{"frontend.tokenizerpath", "FRONTEND_TOKENIZER_PATH", validateEnvPath},
		{"frontend.embeddingpath", "FRONTEND_EMBEDDING_PATH", validateEnvPath},
		{"frontend.cmvnpath", "FRONTEND_CMVN_PATH", validateEnvPath},

		{"decoder.minchars", "DECODER_MIN_CHARS", validateEnvPositiveInt},
		{"decoder.similaritythreshold", "DECODER_SIMILARITY_THRESHOLD", validateEnvUnitFloat},
		{"decoder.duplicatecooldowns", "DECODER_DUPLICATE_COOLDOWN_S", validateEnvNonNegativeFloat},
		{"decoder.enableconfidencestitching", "DECODER_ENABLE_CONFIDENCE_STITCHING", validateEnvBool},
		{"decoder.confidencethreshold", "DECODER_CONFIDENCE_THRESHOLD", validateEnvUnitFloat},
		{"decoder.overlapwordcount", "DECODER_OVERLAP_WORD_COUNT", validateEnvPositiveInt},

		{"timeline.enable", "TIMELINE_ENABLE_TIMELINE_MERGING", validateEnvBool},
		{"timeline.overlapconfidence", "TIMELINE_OVERLAP_CONFIDENCE", validateEnvUnitFloat},
		{"timeline.minwordconfidence", "TIMELINE_MIN_WORD_CONFIDENCE", validateEnvUnitFloat},
		{"timeline.confidencereplacement", "TIMELINE_CONFIDENCE_REPLACEMENT", validateEnvBool},

		{"languagelock.enable", "LANGUAGE_LOCK_ENABLE", validateEnvBool},
		{"languagelock.warmups", "LANGUAGE_LOCK_WARMUP_S", validateEnvNonNegativeFloat},
		{"languagelock.minsamples", "LANGUAGE_LOCK_MIN_SAMPLES", validateEnvPositiveInt},
		{"languagelock.confidence", "LANGUAGE_LOCK_CONFIDENCE", validateEnvUnitFloat},

		{"filter.filterbgm", "FILTER_FILTER_BGM", validateEnvBool},
		{"filter.showemotions", "FILTER_SHOW_EMOTIONS", validateEnvBool},
		{"filter.showevents", "FILTER_SHOW_EVENTS", validateEnvBool},
		{"filter.showlanguage", "FILTER_SHOW_LANGUAGE", validateEnvBool},

		{"queues.preprocess", "QUEUES_PREPROCESS", validateEnvPositiveInt},
		{"queues.inference", "QUEUES_INFERENCE", validateEnvPositiveInt},
		{"queues.postprocess", "QUEUES_POSTPROCESS", validateEnvPositiveInt},
		{"queues.emit", "QUEUES_EMIT", validateEnvPositiveInt},

		{"server.websocketaddr", "SERVER_WEBSOCKET_ADDR", nil},
		{"server.metricsaddr", "SERVER_METRICS_ADDR", nil},
	}
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid bool: %w", err)
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid int: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("must be positive, got %d", n)
	}
	return nil
}

func validateEnvPositiveFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid float: %w", err)
	}
	if f <= 0 {
		return fmt.Errorf("must be positive, got %g", f)
	}
	return nil
}

func validateEnvNonNegativeFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid float: %w", err)
	}
	if f < 0 {
		return fmt.Errorf("must be non-negative, got %g", f)
	}
	return nil
}

func validateEnvUnitFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid float: %w", err)
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("must be between 0 and 1, got %g", f)
	}
	return nil
}

func validateEnvVadMode(value string) error {
	if value != "fast" && value != "accurate" {
		return fmt.Errorf("must be one of: fast, accurate")
	}
	return nil
}

func validateEnvLanguage(value string) error {
	switch value {
	case "auto", "zh", "en", "yue", "ja", "ko", "nospeech":
		return nil
	default:
		return fmt.Errorf("must be one of: auto, zh, en, yue, ja, ko, nospeech")
	}
}

func validateEnvPath(value string) error {
	if strings.Contains(value, "..") {
		return fmt.Errorf("path traversal not allowed")
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for viper.
func configureEnvironmentVariables() error {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("MICASR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return bindEnvVars()
}

// bindEnvVars binds each known environment variable, validating its value
// (if present) before letting viper pick it up. Invalid values are logged
// and skipped, leaving the previously bound value (file or default) in effect.
func bindEnvVars() error {
	var warnings []string

	for _, b := range getEnvBindings() {
		if b.Validate != nil {
			if value, ok := os.LookupEnv("MICASR_" + b.EnvVar); ok && value != "" {
				if err := b.Validate(value); err != nil {
					warnings = append(warnings, fmt.Sprintf("%s=%q: %v", b.EnvVar, value, err))
					continue
				}
			}
		}
		if err := viper.BindEnv(b.ConfigKey, "MICASR_"+b.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: bind failed: %v", b.EnvVar, err))
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("%s", strings.Join(warnings, "; "))
	}
	return nil
}
