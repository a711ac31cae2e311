package frontend

// ApplyLFR stacks lfrM consecutive frames every lfrN frames (low frame
// rate processing). The first input frame is repeated ⌊(lfrM-1)/2⌋ times
// as left padding; the final output frame right-pads by repeating the
// last input frame as needed.
func ApplyLFR(input [][]float64, lfrM, lfrN int) [][]float64 {
	if len(input) == 0 {
		return nil
	}
	dim := len(input[0])
	leftPad := (lfrM - 1) / 2

	padded := make([][]float64, 0, leftPad+len(input))
	for i := 0; i < leftPad; i++ {
		padded = append(padded, input[0])
	}
	padded = append(padded, input...)

	t := len(padded)
	tLFR := (len(input) + lfrN - 1) / lfrN // ceil(T_orig / lfr_n)

	output := make([][]float64, tLFR)
	for i := 0; i < tLFR; i++ {
		start := i * lfrN
		frame := make([]float64, 0, lfrM*dim)

		if lfrM <= t-start {
			for j := 0; j < lfrM; j++ {
				frame = append(frame, padded[start+j]...)
			}
		} else {
			for j := start; j < t; j++ {
				frame = append(frame, padded[j]...)
			}
			numPadding := lfrM - (t - start)
			for j := 0; j < numPadding; j++ {
				frame = append(frame, padded[t-1]...)
			}
		}
		output[i] = frame
	}
	return output
}

// ApplyCMVN normalizes each frame dimension as (x + mean) * variance. The
// reference implementation's stored CMVN convention adds the mean rather
// than subtracting it; variance acts purely as a per-dimension scale.
func ApplyCMVN(input [][]float64, mean, variance []float64) [][]float64 {
	if len(mean) == 0 || len(variance) == 0 {
		return input
	}
	dim := len(input[0])
	if dim > len(mean) {
		dim = len(mean)
	}

	output := make([][]float64, len(input))
	for i, row := range input {
		out := make([]float64, len(row))
		copy(out, row)
		for d := 0; d < dim; d++ {
			out[d] = (out[d] + mean[d]) * variance[d]
		}
		output[i] = out
	}
	return output
}
