// Package decode turns raw NPU logits into structured transcription
// results: CTC greedy decoding with word timestamps, metadata-token
// extraction, duplicate suppression, and confidence-gated boundary
// stitching.
package decode

import "math"

const (
	blankTokenID    = 0
	blankGateThresh = 0.97
	frameDurationMs = 31.25
)

// Run is one non-blank token produced by collapsing consecutive repeats of
// the same id in a CTC argmax sequence. EndFrame is exclusive.
type Run struct {
	TokenID    int
	StartFrame int
	EndFrame   int
	Confidence float64 // max softmax probability over the run
}

// Softmax computes a numerically safe column-wise softmax over logits
// shaped [vocab][frames], clipping the exponent domain to [-100, 100].
func Softmax(logits [][]float64) [][]float64 {
	vocab := len(logits)
	if vocab == 0 {
		return nil
	}
	frames := len(logits[0])

	probs := make([][]float64, vocab)
	for v := range probs {
		probs[v] = make([]float64, frames)
	}

	for t := 0; t < frames; t++ {
		maxLogit := math.Inf(-1)
		for v := 0; v < vocab; v++ {
			if logits[v][t] > maxLogit {
				maxLogit = logits[v][t]
			}
		}

		var sum float64
		exp := make([]float64, vocab)
		for v := 0; v < vocab; v++ {
			shifted := logits[v][t] - maxLogit
			if shifted < -100 {
				shifted = -100
			} else if shifted > 100 {
				shifted = 100
			}
			exp[v] = math.Exp(shifted)
			sum += exp[v]
		}
		for v := 0; v < vocab; v++ {
			probs[v][t] = exp[v] / sum
		}
	}
	return probs
}

// BlankGateOK reports whether the mean blank-token probability across
// frames is below the drop threshold.
func BlankGateOK(probs [][]float64) (ok bool, meanBlank float64) {
	if len(probs) <= blankTokenID {
		return false, 1.0
	}
	blankRow := probs[blankTokenID]
	if len(blankRow) == 0 {
		return false, 1.0
	}
	var sum float64
	for _, p := range blankRow {
		sum += p
	}
	mean := sum / float64(len(blankRow))
	return mean <= blankGateThresh, mean
}

// Argmax returns, for each frame, the vocab index with the highest logit.
func Argmax(logits [][]float64) []int {
	vocab := len(logits)
	if vocab == 0 {
		return nil
	}
	frames := len(logits[0])
	ids := make([]int, frames)
	for t := 0; t < frames; t++ {
		best, bestVal := 0, logits[0][t]
		for v := 1; v < vocab; v++ {
			if logits[v][t] > bestVal {
				best, bestVal = v, logits[v][t]
			}
		}
		ids[t] = best
	}
	return ids
}

// CollapseRuns merges consecutive equal token ids (skipping the blank
// token) into Runs, recording the max softmax probability observed over
// each run's span.
func CollapseRuns(ids []int, probs [][]float64) []Run {
	var runs []Run
	i := 0
	for i < len(ids) {
		tok := ids[i]
		if tok == blankTokenID {
			i++
			continue
		}
		start := i
		maxConf := probs[tok][i]
		j := i + 1
		for j < len(ids) && ids[j] == tok {
			if probs[tok][j] > maxConf {
				maxConf = probs[tok][j]
			}
			j++
		}
		runs = append(runs, Run{TokenID: tok, StartFrame: start, EndFrame: j, Confidence: maxConf})
		i = j
	}
	return runs
}

// FrameToMs converts a frame index to milliseconds using the fixed
// SenseVoice frame duration.
func FrameToMs(frame int) float64 {
	return float64(frame) * frameDurationMs
}
