// Package frontend turns a 16 kHz speech window into the model input
// tensor: Mel-filterbank features, low-frame-rate stacking, CMVN
// normalization, and the prepended embedding query rows (language, event,
// emotion, ITN).
package frontend

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FbankOptions configures Mel-filterbank extraction.
type FbankOptions struct {
	SampleRate    int
	NumMelBins    int
	FrameLengthMs float64
	FrameShiftMs  float64
	EnergyFloor   float64
}

// DefaultFbankOptions matches the documented SenseVoice frontend settings:
// Hamming window, 25 ms frames at 10 ms shift, no dither, snip_edges=true.
func DefaultFbankOptions(sampleRate, numMelBins int) FbankOptions {
	return FbankOptions{
		SampleRate:    sampleRate,
		NumMelBins:    numMelBins,
		FrameLengthMs: 25,
		FrameShiftMs:  10,
		EnergyFloor:   0,
	}
}

// Fbank computes log-Mel filterbank features from waveform, which must
// already be scaled to int16-equivalent amplitude (caller multiplies by
// 2^15 before calling). Frames use snip_edges semantics: only complete
// frames are produced, none are padded at the boundaries.
func Fbank(waveform []float64, opts FbankOptions) [][]float64 {
	frameLen := int(float64(opts.SampleRate) * opts.FrameLengthMs / 1000.0)
	frameShift := int(float64(opts.SampleRate) * opts.FrameShiftMs / 1000.0)
	if frameLen <= 0 || frameShift <= 0 || len(waveform) < frameLen {
		return nil
	}

	numFrames := 1 + (len(waveform)-frameLen)/frameShift
	if numFrames <= 0 {
		return nil
	}

	window := hammingWindow(frameLen)
	fftSize := nextPowerOfTwo(frameLen)
	fft := fourier.NewFFT(fftSize)
	melBank := melFilterbank(opts.NumMelBins, fftSize, opts.SampleRate)

	feats := make([][]float64, numFrames)
	buf := make([]float64, fftSize)

	for i := 0; i < numFrames; i++ {
		start := i * frameShift
		for j := 0; j < fftSize; j++ {
			if j < frameLen {
				buf[j] = waveform[start+j] * window[j]
			} else {
				buf[j] = 0
			}
		}

		spectrum := fft.Coefficients(nil, buf)
		power := make([]float64, len(spectrum))
		for k, c := range spectrum {
			mag := math.Hypot(real(c), imag(c))
			power[k] = mag * mag
		}

		row := make([]float64, opts.NumMelBins)
		for m := 0; m < opts.NumMelBins; m++ {
			var energy float64
			for k, w := range melBank[m] {
				energy += w * power[k]
			}
			if energy < opts.EnergyFloor {
				energy = opts.EnergyFloor
			}
			const eps = 1e-10
			row[m] = math.Log(energy + eps)
		}
		feats[i] = row
	}

	return feats
}

func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// melFilterbank builds numMelBins triangular filters over the FFT
// magnitude bins [0, fftSize/2], spanning 0 Hz to the Nyquist frequency.
func melFilterbank(numMelBins, fftSize, sampleRate int) [][]float64 {
	numBins := fftSize/2 + 1
	nyquist := float64(sampleRate) / 2.0

	hzToMel := func(hz float64) float64 { return 2595 * math.Log10(1+hz/700) }
	melToHz := func(mel float64) float64 { return 700 * (math.Pow(10, mel/2595) - 1) }

	lowMel := hzToMel(0)
	highMel := hzToMel(nyquist)

	melPoints := make([]float64, numMelBins+2)
	for i := range melPoints {
		melPoints[i] = lowMel + (highMel-lowMel)*float64(i)/float64(numMelBins+1)
	}

	binFreqs := make([]int, numMelBins+2)
	for i, mel := range melPoints {
		hz := melToHz(mel)
		binFreqs[i] = int(math.Floor((float64(fftSize) + 1) * hz / float64(sampleRate)))
	}

	bank := make([][]float64, numMelBins)
	for m := 0; m < numMelBins; m++ {
		filter := make([]float64, numBins)
		left, center, right := binFreqs[m], binFreqs[m+1], binFreqs[m+2]

		for k := left; k < center && k < numBins; k++ {
			if center != left {
				filter[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k < right && k < numBins; k++ {
			if right != center {
				filter[k] = float64(right-k) / float64(right-center)
			}
		}
		bank[m] = filter
	}
	return bank
}
