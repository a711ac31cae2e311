package audiosrc

import (
	"testing"

	"github.com/gen2brain/malgo"
	"github.com/stretchr/testify/assert"
)

func TestToFloat32MonoS16(t *testing.T) {
	// two int16 samples: 0 and 16384 (half-scale), little-endian
	raw := []byte{0x00, 0x00, 0x00, 0x40}
	out, err := toFloat32Mono(raw, malgo.FormatS16)
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[1], 1e-3)
}

func TestToFloat32MonoUnsupportedFormat(t *testing.T) {
	_, err := toFloat32Mono([]byte{1, 2, 3}, malgo.FormatU8)
	assert.Error(t, err)
}
