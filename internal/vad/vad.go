// Package vad implements multi-feature voice activity detection: an RMS
// energy gate with adaptive-floor support, zero-crossing rate, and (in
// accurate mode) normalized spectral entropy computed from a real FFT.
package vad

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Mode selects how much signal is analyzed per window.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeAccurate Mode = "accurate"
)

// Config holds the tunable thresholds for speech detection.
type Config struct {
	Mode               Mode
	ZCRMin             float64
	ZCRMax             float64
	EntropyMax         float64
	StaticEnergyThresh float64 // used when no noise floor is available
	RMSMargin          float64
}

// Metrics reports the computed features and gate outcomes for one window,
// mirroring the diagnostic dict the reference implementation returns.
type Metrics struct {
	RMS              float64
	ZCR              float64
	SpectralEntropy  float64 // -1 in fast mode (not computed)
	IsSpeech         bool
	EnergyOK         bool
	ZCROK            bool
	EntropyOK        bool
}

// Detector runs VAD decisions against a fixed configuration.
type Detector struct {
	cfg Config
}

// New returns a Detector for cfg.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// IsSpeech evaluates whether samples (f32, normalized to [-1, 1]) contains
// speech, given an optional noise floor. When noiseFloor is absent, the
// static energy threshold is used instead. Computation short-circuits on
// the energy gate: ZCR and spectral entropy are skipped entirely when
// energy is insufficient.
func (d *Detector) IsSpeech(samples []float32, noiseFloor float32, haveFloor bool) Metrics {
	rms := RMS(samples)

	var energyThreshold float64
	if haveFloor {
		energyThreshold = float64(noiseFloor) + d.cfg.RMSMargin
	} else {
		energyThreshold = d.cfg.StaticEnergyThresh
	}
	energyOK := rms > energyThreshold

	if !energyOK {
		return Metrics{
			RMS:             rms,
			ZCR:             0,
			SpectralEntropy: 1,
			IsSpeech:        false,
			EnergyOK:        false,
			ZCROK:           false,
			EntropyOK:       false,
		}
	}

	zcr := ZeroCrossingRate(samples)
	zcrOK := zcr > d.cfg.ZCRMin && zcr < d.cfg.ZCRMax

	if d.cfg.Mode == ModeFast {
		return Metrics{
			RMS:             rms,
			ZCR:             zcr,
			SpectralEntropy: -1,
			IsSpeech:        energyOK && zcrOK,
			EnergyOK:        energyOK,
			ZCROK:           zcrOK,
			EntropyOK:       true,
		}
	}

	entropy := SpectralEntropy(samples)
	entropyOK := entropy < d.cfg.EntropyMax

	return Metrics{
		RMS:             rms,
		ZCR:             zcr,
		SpectralEntropy: entropy,
		IsSpeech:        energyOK && (zcrOK || entropyOK),
		EnergyOK:        energyOK,
		ZCROK:           zcrOK,
		EntropyOK:       entropyOK,
	}
}

// RMS computes sqrt(mean(x^2) + 1e-12) over samples.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		v := float64(s)
		sumSq += v * v
	}
	return math.Sqrt(sumSq/float64(len(samples)) + 1e-12)
}

// ZeroCrossingRate counts sign changes between adjacent samples, divided
// by the sample count.
func ZeroCrossingRate(samples []float32) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	for i := 0; i < len(samples)-1; i++ {
		if samples[i]*samples[i+1] < 0 {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples))
}

// SpectralEntropy computes normalized Shannon entropy of the power
// spectrum from a real FFT, excluding the zero-power bins from both the
// entropy sum and the max-entropy denominator.
func SpectralEntropy(samples []float32) float64 {
	if len(samples) < 2 {
		return 1.0
	}

	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s)
	}

	fft := fourier.NewFFT(len(x))
	spectrum := fft.Coefficients(nil, x)

	power := make([]float64, len(spectrum))
	var total float64
	for i, c := range spectrum {
		mag := math.Hypot(real(c), imag(c))
		p := mag * mag
		power[i] = p
		total += p
	}

	const eps = 1e-12
	total += eps

	var entropy float64
	nonZero := 0
	for _, p := range power {
		psd := p / total
		if psd > eps {
			entropy -= psd * math.Log2(psd)
			nonZero++
		}
	}

	if nonZero == 0 {
		return 1.0
	}
	maxEntropy := math.Log2(float64(nonZero))
	if maxEntropy <= 0 {
		return 1.0
	}
	return entropy / maxEntropy
}
