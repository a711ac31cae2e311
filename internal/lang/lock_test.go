package lang

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		Enabled:             true,
		InitialLanguage:     "auto",
		WarmupDuration:      0,
		MinSamples:          2,
		ConfidenceThreshold: 0.6,
	}
}

func TestNewPreLockedWhenInitialLanguageSet(t *testing.T) {
	l := New(Config{Enabled: true, InitialLanguage: "en"})
	assert.True(t, l.IsLocked())
	assert.Equal(t, "en", l.GetCurrentLanguage())
}

func TestRecordDetectionLocksOnMajority(t *testing.T) {
	l := New(testConfig())
	l.RecordDetection("English")
	time.Sleep(time.Millisecond)
	l.RecordDetection("English")

	assert.True(t, l.IsLocked())
	assert.Equal(t, "en", l.GetCurrentLanguage())
}

func TestRecordDetectionRemainsAutoWhenInconclusive(t *testing.T) {
	cfg := testConfig()
	cfg.MinSamples = 2
	cfg.ConfidenceThreshold = 0.9
	l := New(cfg)
	l.RecordDetection("English")
	l.RecordDetection("Chinese")

	assert.True(t, l.IsLocked())
	assert.Equal(t, "auto", l.GetCurrentLanguage())
}

func TestRecordDetectionIgnoresUnknownLanguageName(t *testing.T) {
	l := New(testConfig())
	l.RecordDetection("Klingon")
	assert.False(t, l.IsLocked())
}

func TestResetReturnsToInitialState(t *testing.T) {
	l := New(testConfig())
	l.RecordDetection("English")
	l.RecordDetection("English")
	assert.True(t, l.IsLocked())

	l.Reset()
	assert.False(t, l.IsLocked())
	assert.Equal(t, "auto", l.GetCurrentLanguage())
}

func TestGetStatusReportsDistribution(t *testing.T) {
	cfg := testConfig()
	cfg.MinSamples = 10
	l := New(cfg)
	l.RecordDetection("English")
	l.RecordDetection("English")
	l.RecordDetection("Chinese")

	status := l.GetStatus()
	assert.Equal(t, 3, status.DetectionsCount)
	assert.Equal(t, "en", status.LeadingLanguage)
}
