package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orangepi5/micasr/internal/timeline"
)

func TestFloat32SampleByteRoundTrip(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1}
	raw := float32SamplesToBytes(samples)
	back := bytesToFloat32Samples(raw)
	assert.Equal(t, samples, back)
}

func TestFingerprintIsStableAndSensitive(t *testing.T) {
	a := []float32{0.1, 0.2, 0.3}
	b := []float32{0.1, 0.2, 0.3}
	c := []float32{0.1, 0.2, 0.4}

	assert.Equal(t, fingerprint(a), fingerprint(b))
	assert.NotEqual(t, fingerprint(a), fingerprint(c))
}

func TestFlattenFeatures(t *testing.T) {
	features := [][]float32{{1, 2}, {3, 4}, {5, 6}}
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, flattenFeatures(features))
}

func TestFlattenFeaturesEmpty(t *testing.T) {
	assert.Nil(t, flattenFeatures(nil))
}

func TestJoinWords(t *testing.T) {
	words := []timeline.Word{{Text: "hello"}, {Text: "world"}}
	assert.Equal(t, "hello world", joinWords(words))
}

func TestJoinWordsEmpty(t *testing.T) {
	assert.Equal(t, "", joinWords(nil))
}
