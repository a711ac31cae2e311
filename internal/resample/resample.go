// Package resample converts PCM audio between sample rates. The pipeline
// front end only ever needs device-rate -> 16 kHz (the model's expected
// rate); Resample re-derives the full output from the full input on every
// call rather than carrying filter state across windows, since each
// AudioWindow is processed independently end to end.
package resample

import "fmt"

// Resample linearly resamples input from originalRate to targetRate. When
// the rates match, input is returned unchanged (no copy). Output length is
// round(len(input) * targetRate / originalRate).
func Resample(input []float32, originalRate, targetRate int) ([]float32, error) {
	if originalRate <= 0 || targetRate <= 0 {
		return nil, fmt.Errorf("resample: rates must be positive, got %d -> %d", originalRate, targetRate)
	}
	if originalRate == targetRate {
		return input, nil
	}
	if len(input) == 0 {
		return nil, nil
	}

	ratio := float64(targetRate) / float64(originalRate)
	outLen := int(float64(len(input))*ratio + 0.5)
	if outLen < 1 {
		outLen = 1
	}

	output := make([]float32, outLen)
	step := float64(originalRate) / float64(targetRate)

	for i := range output {
		srcPos := float64(i) * step
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		if idx >= len(input)-1 {
			output[i] = input[len(input)-1]
			continue
		}
		a, b := input[idx], input[idx+1]
		output[i] = a + float32(frac)*(b-a)
	}

	return output, nil
}

// NormalizeInt16 converts raw int16 PCM samples to f32 normalized to
// [-1, 1], as the frontend expects.
func NormalizeInt16(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}
