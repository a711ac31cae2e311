// Package lang implements automatic language detection and locking so a
// single-language session stops paying for per-chunk language inference
// once the spoken language is confidently established.
package lang

import (
	"sync"
	"time"
)

// CodeMap translates the decoder's full language names into the short
// codes used throughout configuration and the frontend query embedding.
var CodeMap = map[string]string{
	"Chinese":   "zh",
	"English":   "en",
	"Japanese":  "ja",
	"Korean":    "ko",
	"Cantonese": "yue",
}

// Config holds the lock manager's tunable thresholds.
type Config struct {
	Enabled            bool
	InitialLanguage    string
	WarmupDuration     time.Duration
	MinSamples         int
	ConfidenceThreshold float64
}

// Status reports the lock manager's current state for diagnostics.
type Status struct {
	Enabled              bool
	Locked               bool
	CurrentLanguage      string
	DetectionsCount      int
	WarmupProgress       float64
	WarmupElapsed        time.Duration
	LanguageDistribution map[string]int
	LeadingLanguage      string
	LeadingConfidence    float64
}

// Lock tracks per-chunk language detections during a warmup window and
// locks onto the majority language once enough evidence has accumulated.
type Lock struct {
	mu sync.Mutex

	cfg Config

	currentLanguage string
	locked          bool
	warmupStart     time.Time
	haveWarmupStart bool
	detections      []string
}

// New constructs a Lock. If cfg.InitialLanguage is anything but "auto" the
// language starts pre-locked and detections are never recorded.
func New(cfg Config) *Lock {
	return &Lock{
		cfg:             cfg,
		currentLanguage: cfg.InitialLanguage,
		locked:          cfg.InitialLanguage != "auto",
	}
}

// StartWarmup begins the detection warmup window, a no-op if already
// locked, disabled, or already started.
func (l *Lock) StartWarmup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.startWarmupLocked()
}

func (l *Lock) startWarmupLocked() {
	if l.cfg.Enabled && !l.locked && !l.haveWarmupStart {
		l.warmupStart = time.Now()
		l.haveWarmupStart = true
	}
}

// RecordDetection records one chunk's detected full language name (e.g.
// "English", "Chinese") during warmup and checks the lock conditions.
func (l *Lock) RecordDetection(languageName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.cfg.Enabled || l.locked {
		return
	}

	if !l.haveWarmupStart {
		l.startWarmupLocked()
	}

	code, ok := CodeMap[languageName]
	if !ok {
		return
	}

	l.detections = append(l.detections, code)
	l.checkLockConditions()
}

func (l *Lock) checkLockConditions() {
	if l.locked || !l.haveWarmupStart {
		return
	}

	// A positive warmup duration is a real timeout: while it hasn't
	// elapsed, keep collecting regardless of how many samples are in.
	// A zero duration means there's no timeout at all, so the only
	// gate left is having enough samples to decide.
	warmupElapsed := l.cfg.WarmupDuration <= 0 || time.Since(l.warmupStart) >= l.cfg.WarmupDuration

	if len(l.detections) < l.cfg.MinSamples {
		if warmupElapsed && l.cfg.WarmupDuration > 0 {
			l.locked = true
		}
		return
	}

	if !warmupElapsed {
		return
	}

	counts := make(map[string]int)
	for _, d := range l.detections {
		counts[d]++
	}
	mostCommon, count := mostCommonEntry(counts)
	total := len(l.detections)
	confidence := float64(count) / float64(total)

	if confidence >= l.cfg.ConfidenceThreshold {
		l.currentLanguage = mostCommon
	}
	l.locked = true
}

func mostCommonEntry(counts map[string]int) (string, int) {
	var best string
	var bestCount int
	for lang, count := range counts {
		if count > bestCount {
			best, bestCount = lang, count
		}
	}
	return best, bestCount
}

// GetCurrentLanguage returns the current language code ("auto", "en", ...).
func (l *Lock) GetCurrentLanguage() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLanguage
}

// IsLocked reports whether the language decision is final.
func (l *Lock) IsLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

// IsEnabled reports whether auto-lock is active at all.
func (l *Lock) IsEnabled() bool {
	return l.cfg.Enabled
}

// GetStatus reports a snapshot of the lock manager's state.
func (l *Lock) GetStatus() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	status := Status{
		Enabled:         l.cfg.Enabled,
		Locked:          l.locked,
		CurrentLanguage: l.currentLanguage,
		DetectionsCount: len(l.detections),
	}

	if l.haveWarmupStart && !l.locked {
		elapsed := time.Since(l.warmupStart)
		status.WarmupElapsed = elapsed
		status.WarmupProgress = elapsed.Seconds() / l.cfg.WarmupDuration.Seconds()
	}

	if len(l.detections) > 0 {
		counts := make(map[string]int)
		for _, d := range l.detections {
			counts[d]++
		}
		status.LanguageDistribution = counts
		lead, count := mostCommonEntry(counts)
		status.LeadingLanguage = lead
		status.LeadingConfidence = float64(count) / float64(len(l.detections))
	}

	return status
}

// Reset returns the lock manager to its initial, pre-warmup state.
func (l *Lock) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentLanguage = l.cfg.InitialLanguage
	l.locked = l.cfg.InitialLanguage != "auto"
	l.haveWarmupStart = false
	l.detections = nil
}
