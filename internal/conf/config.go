// Package conf provides typed configuration for the transcription pipeline:
// a Settings tree loaded from an embedded YAML default, a config file found
// via OS-specific search paths, and environment variable overrides, in that
// precedence order (lowest to highest).
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings is the full, closed-set configuration tree for the pipeline.
type Settings struct {
	Debug bool

	Main struct {
		Name string
		Log  LogConfig
	}

	Audio struct {
		ChunkDurationS   float64 // chunk_duration_s
		OverlapDurationS float64 // overlap_duration_s
		ChunkSize        int     // device callback frame size
		NoiseCalibSecs   float64 // noise_calib_secs
		RMSMargin        float64 // rms_margin
		Device           string  // optional device name hint
	}

	VAD struct {
		Enable            bool
		Mode              string // "fast" | "accurate"
		ZCRMin            float64
		ZCRMax            float64
		EntropyMax        float64
		AdaptiveNoiseFloor bool
	}

	Frontend struct {
		MelBins        int
		MaxFrames      int
		LFRM           int
		LFRN           int
		RKNNInputLen   int
		SpeechScale    float64
		UseITN         bool
		Language       string // auto, zh, en, yue, ja, ko, nospeech
		VocabSize      int
		ModelPath      string
		TokenizerPath  string
		EmbeddingPath  string
		CMVNPath       string
	}

	Decoder struct {
		MinChars                  int
		SimilarityThreshold        float64
		DuplicateCooldownS         float64
		EnableConfidenceStitching bool
		ConfidenceThreshold        float64
		OverlapWordCount           int
	}

	Timeline struct {
		Enable                     bool
		OverlapConfidence          float64
		MinWordConfidence          float64
		ConfidenceReplacement      bool
	}

	LanguageLock struct {
		Enable       bool
		WarmupS      float64
		MinSamples   int
		Confidence   float64
	}

	Filter struct {
		FilterBGM    bool
		FilterEvents []string
		ShowEmotions bool
		ShowEvents   bool
		ShowLanguage bool
	}

	Queues struct {
		Preprocess  int
		Inference   int
		Postprocess int
		Emit        int
	}

	Server struct {
		WebsocketAddr string
		MetricsAddr   string
	}
}

// LogConfig describes the ambient file logger.
type LogConfig struct {
	Enabled     bool
	Path        string
	Rotation    RotationType
	MaxSize     int64
}

type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the embedded defaults, config file, and environment overrides
// into a fresh Settings instance, validates it, and stores it as current.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := configureEnvironmentVariables(); err != nil {
		log.Printf("environment variable validation warnings: %v", err)
	}
	// Re-unmarshal so bound env vars (if any changed via viper.Set) take effect.
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config after env overrides: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	settingsInstance = settings
	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil { //nolint:gosec // default config is not secret
		return fmt.Errorf("error writing default config file: %w", err)
	}
	return viper.ReadInConfig()
}

func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("error reading embedded default config: %v", err)
	}
	return string(data)
}

// GetSettings returns the currently loaded settings, or nil if Load has not run.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings, loading defaults on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}
