package frontend

import (
	"testing"

	"github.com/orangepi5/micasr/internal/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFbankProducesExpectedFrameCount(t *testing.T) {
	t.Parallel()
	opts := DefaultFbankOptions(16000, 80)
	waveform := make([]float64, 16000) // 1 second
	feats := Fbank(waveform, opts)

	frameLen := 400   // 25ms @ 16kHz
	frameShift := 160 // 10ms @ 16kHz
	want := 1 + (len(waveform)-frameLen)/frameShift
	require.Len(t, feats, want)
	for _, row := range feats {
		assert.Len(t, row, 80)
	}
}

func TestApplyLFRStacksFrames(t *testing.T) {
	t.Parallel()
	input := make([][]float64, 12)
	for i := range input {
		input[i] = []float64{float64(i)}
	}
	out := ApplyLFR(input, 7, 6)
	assert.Len(t, out, 2)
	assert.Len(t, out[0], 7)
}

func TestApplyCMVNAddsMeanScalesVariance(t *testing.T) {
	t.Parallel()
	input := [][]float64{{1, 2}}
	mean := []float64{1, 1}
	variance := []float64{2, 2}
	out := ApplyCMVN(input, mean, variance)
	assert.InDelta(t, 4.0, out[0][0], 1e-9) // (1+1)*2
	assert.InDelta(t, 6.0, out[0][1], 1e-9) // (2+1)*2
}

func TestApplyCMVNNoOpWithoutParams(t *testing.T) {
	t.Parallel()
	input := [][]float64{{1, 2}}
	out := ApplyCMVN(input, nil, nil)
	assert.Equal(t, input, out)
}

func TestAssembleProducesFixedLengthTensor(t *testing.T) {
	t.Parallel()
	dim := 4
	rows := make([][]float32, 16)
	for i := range rows {
		row := make([]float32, dim)
		for d := range row {
			row[d] = float32(i)
		}
		rows[i] = row
	}
	embed := embedding.NewForTest(rows)

	fe := New(DefaultFbankOptions(16000, 80), 7, 6, 3000, nil, embed)
	waveform := make([]float32, 16000)
	tensor := fe.Assemble(waveform, "en", true)

	assert.Len(t, tensor, RKNNInputLen)
	for _, row := range tensor {
		assert.Len(t, row, dim)
	}
}
