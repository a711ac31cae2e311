// Package pipeline wires the bounded-queue worker stages — preprocessing,
// NPU inference, and postprocessing — into one running transcription
// pipeline, each stage CPU- or NPU-bound and running concurrently so a
// slow stage never blocks the others beyond its own queue.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orangepi5/micasr/internal/logging"
)

const (
	stagePopTimeout  = 500 * time.Millisecond
	stagePushTimeout = 1 * time.Second
	slowStageMs      = 100.0
)

// Stats reports one stage's lifetime counters.
type Stats struct {
	Processed   int64
	Skipped     int64
	Errors      int64
	TotalTimeMs float64
	QueueSize   int
}

// AvgTimeMs returns TotalTimeMs divided by the number of processed items.
// TotalTimeMs also includes the time spent on skipped and failed items.
func (s Stats) AvgTimeMs() float64 {
	if s.Processed == 0 {
		return 0
	}
	return s.TotalTimeMs / float64(s.Processed)
}

// ProcessFunc transforms one input item into an output item. Returning
// ok=false skips the item (no output emitted, counted as skipped, not an
// error) — used for VAD rejection, blank-gate rejection, and similar
// intentional drops.
type ProcessFunc[In, Out any] func(In) (out Out, ok bool, err error)

// Stage runs one ProcessFunc in a dedicated goroutine, pulling from an
// input channel and, if present, pushing to an output channel.
type Stage[In, Out any] struct {
	name    string
	process ProcessFunc[In, Out]

	input  <-chan In
	output chan<- Out

	running atomic.Bool
	wg      sync.WaitGroup

	mu          sync.Mutex
	processed   int64
	skipped     int64
	errs        int64
	totalTimeMs float64

	inputLen func() int
}

// NewStage constructs a Stage. output may be nil for a terminal stage.
func NewStage[In, Out any](name string, input <-chan In, output chan<- Out, fn ProcessFunc[In, Out]) *Stage[In, Out] {
	return &Stage[In, Out]{name: name, process: fn, input: input, output: output}
}

// Start launches the stage's worker goroutine. Returns false if already running.
func (s *Stage[In, Out]) Start(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	s.wg.Add(1)
	go s.loop(ctx)
	return true
}

// Stop signals the worker to exit and waits up to timeout for it to finish.
func (s *Stage[In, Out]) Stop(timeout time.Duration) {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}

	stats := s.GetStats()
	logging.Info("pipeline stage stopped", "stage", s.name,
		"processed", stats.Processed, "skipped", stats.Skipped,
		"errors", stats.Errors, "avg_ms", stats.AvgTimeMs())
}

func (s *Stage[In, Out]) loop(ctx context.Context) {
	defer s.wg.Done()

	for s.running.Load() {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-s.input:
			if !ok {
				return
			}
			s.handle(ctx, item)
		case <-time.After(stagePopTimeout):
			continue
		}
	}
}

func (s *Stage[In, Out]) handle(ctx context.Context, item In) {
	start := time.Now()
	out, ok, err := s.process(item)
	elapsedMs := float64(time.Since(start)) / float64(time.Millisecond)

	s.mu.Lock()
	s.totalTimeMs += elapsedMs
	s.mu.Unlock()

	if err != nil {
		atomic.AddInt64(&s.errs, 1)
		logging.Error("pipeline stage error", "stage", s.name, "error", err)
		return
	}

	if !ok {
		atomic.AddInt64(&s.skipped, 1)
		return
	}

	atomic.AddInt64(&s.processed, 1)

	if elapsedMs > slowStageMs {
		logging.Warn("pipeline stage slow", "stage", s.name, "elapsed_ms", elapsedMs)
	}

	if s.output != nil {
		select {
		case s.output <- out:
		case <-time.After(stagePushTimeout):
			logging.Warn("pipeline stage output queue full, dropping result", "stage", s.name)
		case <-ctx.Done():
		}
	}
}

// GetStats returns a snapshot of the stage's counters.
func (s *Stage[In, Out]) GetStats() Stats {
	s.mu.Lock()
	total := s.totalTimeMs
	s.mu.Unlock()

	qsize := 0
	if s.inputLen != nil {
		qsize = s.inputLen()
	}

	return Stats{
		Processed:   atomic.LoadInt64(&s.processed),
		Skipped:     atomic.LoadInt64(&s.skipped),
		Errors:      atomic.LoadInt64(&s.errs),
		TotalTimeMs: total,
		QueueSize:   qsize,
	}
}

// SetQueueLenFunc wires a function returning the input channel's current
// length, used only for reporting via GetStats (channel length can't be
// introspected generically).
func (s *Stage[In, Out]) SetQueueLenFunc(fn func() int) {
	s.inputLen = fn
}
