package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampleSameRateReturnsInput(t *testing.T) {
	t.Parallel()
	input := []float32{0.1, 0.2, 0.3, 0.4, 0.5}
	result, err := Resample(input, 48000, 48000)
	require.NoError(t, err)
	assert.Equal(t, &input[0], &result[0])
}

func TestResampleOutputLength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                     string
		inputLen, from, to, want int
	}{
		{"44100_to_48000", 44100, 44100, 48000, 48000},
		{"48000_to_44100", 48000, 48000, 44100, 44100},
		{"16000_to_48000", 16000, 16000, 48000, 48000},
		{"96000_to_48000", 96000, 96000, 48000, 48000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make([]float32, tt.inputLen)
			result, err := Resample(input, tt.from, tt.to)
			require.NoError(t, err)
			assert.Len(t, result, tt.want)
		})
	}
}

func TestResampleDCSignalPreserved(t *testing.T) {
	t.Parallel()
	dc := float32(0.5)
	input := make([]float32, 48000)
	for i := range input {
		input[i] = dc
	}
	result, err := Resample(input, 48000, 16000)
	require.NoError(t, err)
	for i, v := range result {
		assert.InDelta(t, dc, v, 1e-4, "sample %d", i)
	}
}

func TestResampleSineFrequencyPreserved(t *testing.T) {
	t.Parallel()
	originalRate, targetRate, freq := 48000, 16000, 440.0
	input := make([]float32, originalRate)
	for i := range input {
		input[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(originalRate)))
	}
	result, err := Resample(input, originalRate, targetRate)
	require.NoError(t, err)

	crossings := 0
	for i := 1; i < len(result); i++ {
		if result[i-1] <= 0 && result[i] > 0 {
			crossings++
		}
	}
	assert.InDelta(t, freq, float64(crossings), 5)
}

func TestResampleRejectsNonPositiveRates(t *testing.T) {
	t.Parallel()
	_, err := Resample([]float32{1, 2, 3}, 0, 16000)
	assert.Error(t, err)
}

func TestNormalizeInt16(t *testing.T) {
	t.Parallel()
	out := NormalizeInt16([]int16{0, 32767, -32768})
	require.Len(t, out, 3)
	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 1.0, out[1], 1e-4)
	assert.InDelta(t, -1.0, out[2], 1e-4)
}
