package vad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRMSOfSilence(t *testing.T) {
	t.Parallel()
	samples := make([]float32, 100)
	assert.InDelta(t, 0.0, RMS(samples), 1e-5)
}

func TestZeroCrossingRateAlternating(t *testing.T) {
	t.Parallel()
	samples := []float32{1, -1, 1, -1, 1, -1}
	assert.InDelta(t, 1.0, ZeroCrossingRate(samples), 1e-6)
}

func TestZeroCrossingRateConstant(t *testing.T) {
	t.Parallel()
	samples := []float32{0.5, 0.5, 0.5, 0.5}
	assert.InDelta(t, 0.0, ZeroCrossingRate(samples), 1e-6)
}

func TestIsSpeechShortCircuitsOnLowEnergy(t *testing.T) {
	t.Parallel()
	d := New(Config{Mode: ModeAccurate, ZCRMin: 0.02, ZCRMax: 0.35, EntropyMax: 0.85, StaticEnergyThresh: 0.01})
	samples := make([]float32, 1600)
	m := d.IsSpeech(samples, 0, false)
	assert.False(t, m.IsSpeech)
	assert.False(t, m.EnergyOK)
	assert.Equal(t, 1.0, m.SpectralEntropy)
}

func TestIsSpeechFastModeSkipsEntropy(t *testing.T) {
	t.Parallel()
	d := New(Config{Mode: ModeFast, ZCRMin: 0.02, ZCRMax: 0.35, EntropyMax: 0.85, StaticEnergyThresh: 0.001})
	samples := make([]float32, 1600)
	for i := range samples {
		if i%3 == 0 {
			samples[i] = 0.3
		} else {
			samples[i] = -0.3
		}
	}
	m := d.IsSpeech(samples, 0, false)
	assert.Equal(t, -1.0, m.SpectralEntropy)
	assert.True(t, m.EntropyOK)
}

func TestIsSpeechUsesAdaptiveFloor(t *testing.T) {
	t.Parallel()
	d := New(Config{Mode: ModeFast, ZCRMin: 0.0, ZCRMax: 1.0, StaticEnergyThresh: 10})
	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = 0.02
	}
	m := d.IsSpeech(samples, 0.01, true)
	assert.True(t, m.EnergyOK)
}

func TestSpectralEntropyOfPureTone(t *testing.T) {
	t.Parallel()
	samples := make([]float32, 512)
	for i := range samples {
		samples[i] = 1.0
	}
	entropy := SpectralEntropy(samples)
	assert.GreaterOrEqual(t, entropy, 0.0)
	assert.LessOrEqual(t, entropy, 1.0)
}
