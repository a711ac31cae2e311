// Package errors provides a component- and category-tagged error type used
// throughout the transcription pipeline instead of bare fmt.Errorf, so that
// logs and metrics can group failures by where and why they happened without
// parsing message strings.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory classifies why an error occurred, matching the error
// taxonomy of the pipeline's failure modes.
type ErrorCategory string

const (
	CategoryInit           ErrorCategory = "init"           // missing/unreadable model, tokenizer, embedding, CMVN
	CategoryAudioUnavail   ErrorCategory = "audio_unavail"   // no device supports a preferred (rate, channels)
	CategoryAudioTransient ErrorCategory = "audio_transient" // a single frame read failed
	CategoryBackpressure   ErrorCategory = "backpressure"    // queue full on push
	CategoryInference      ErrorCategory = "inference_empty" // NPU returned no output
	CategoryDecode         ErrorCategory = "decode_rejected" // blank-gate / min-chars / duplicate filter
	CategorySink           ErrorCategory = "sink_failure"    // broadcast or console sink failed
	CategoryValidation     ErrorCategory = "validation"      // config validation
)

// Priority indicates how urgently an error needs operator attention.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// EnhancedError wraps an underlying error with component, category,
// priority, and free-form context used for structured logging.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Priority  Priority
	Context   map[string]any
}

func (e *EnhancedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s/%s] (nil error)", e.Component, e.Category)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Component, e.Category, e.Err.Error())
}

func (e *EnhancedError) Unwrap() error { return e.Err }

// Builder is a fluent constructor for EnhancedError.
type Builder struct {
	err *EnhancedError
}

// New starts a builder wrapping err.
func New(err error) *Builder {
	return &Builder{err: &EnhancedError{Err: err, Priority: PriorityMedium}}
}

// Newf is a convenience for New(fmt.Errorf(format, args...)).
func Newf(format string, args ...any) *Builder {
	return New(fmt.Errorf(format, args...))
}

func (b *Builder) Component(c string) *Builder {
	b.err.Component = c
	return b
}

func (b *Builder) Category(c ErrorCategory) *Builder {
	b.err.Category = c
	return b
}

func (b *Builder) Priority(p Priority) *Builder {
	b.err.Priority = p
	return b
}

func (b *Builder) Context(key string, value any) *Builder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]any, 4)
	}
	b.err.Context[key] = value
	return b
}

func (b *Builder) Build() *EnhancedError {
	return b.err
}

// Is/As/Unwrap/Join pass through to the standard library so callers can use
// this package as a drop-in for "errors" in code that also needs EnhancedError.
func Is(err, target error) bool    { return stderrors.Is(err, target) }
func As(err error, target any) bool { return stderrors.As(err, target) }
func Unwrap(err error) error       { return stderrors.Unwrap(err) }
func Join(errs ...error) error     { return stderrors.Join(errs...) }

// IsCategory reports whether err (or a wrapped EnhancedError within it) has the given category.
func IsCategory(err error, cat ErrorCategory) bool {
	var ee *EnhancedError
	if stderrors.As(err, &ee) {
		return ee.Category == cat
	}
	return false
}
