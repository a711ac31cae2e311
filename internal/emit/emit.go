// Package emit decouples transcription output from the processing
// pipeline: a bounded queue and a single worker goroutine own all
// console and broadcast I/O, so a slow sink never stalls inference.
package emit

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orangepi5/micasr/internal/decode"
	"github.com/orangepi5/micasr/internal/format"
	"github.com/orangepi5/micasr/internal/logging"
	"github.com/orangepi5/micasr/internal/timeline"
)

const workerPopTimeout = 500 * time.Millisecond

// Broadcaster pushes a finished transcription result to external
// subscribers (e.g. a websocket hub). Implementations must not block
// indefinitely.
type Broadcaster interface {
	BroadcastTranscription(result *decode.Result, newWords []timeline.Word) error
}

// Stats reports the emitter's lifetime counters.
type Stats struct {
	Emitted int64
	Dropped int64
	Errors  int64
}

type item struct {
	text     string
	result   *decode.Result
	newWords []timeline.Word
}

// Emitter owns a bounded queue of pending results and a background worker
// that formats and ships them, so emission never blocks the pipeline.
type Emitter struct {
	formatter   *format.Formatter
	broadcaster Broadcaster

	queue   chan item
	running atomic.Bool
	wg      sync.WaitGroup

	emitted atomic.Int64
	dropped atomic.Int64
	errors  atomic.Int64
}

// New constructs an Emitter with the given queue capacity.
func New(formatter *format.Formatter, broadcaster Broadcaster, queueSize int) *Emitter {
	return &Emitter{
		formatter:   formatter,
		broadcaster: broadcaster,
		queue:       make(chan item, queueSize),
	}
}

// Start launches the background worker. Returns false if already running.
func (e *Emitter) Start(ctx context.Context) bool {
	if !e.running.CompareAndSwap(false, true) {
		return false
	}
	e.wg.Add(1)
	go e.worker(ctx)
	return true
}

// Stop signals the worker to drain and exit, waiting up to the given
// timeout for it to finish.
func (e *Emitter) Stop(timeout time.Duration) {
	if !e.running.CompareAndSwap(true, false) {
		return
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}

	logging.Info("async emitter stopped",
		"emitted", e.emitted.Load(), "dropped", e.dropped.Load(), "errors", e.errors.Load())
}

// Emit enqueues a result for background emission. It never blocks: if the
// queue is full the result is dropped and counted.
func (e *Emitter) Emit(text string, result *decode.Result, newWords []timeline.Word) bool {
	select {
	case e.queue <- item{text: text, result: result, newWords: newWords}:
		return true
	default:
		e.dropped.Add(1)
		logging.Warn("emission queue full, dropping result", "dropped_total", e.dropped.Load())
		return false
	}
}

// GetStats returns a snapshot of the emitter's counters.
func (e *Emitter) GetStats() Stats {
	return Stats{
		Emitted: e.emitted.Load(),
		Dropped: e.dropped.Load(),
		Errors:  e.errors.Load(),
	}
}

// QueueLen reports the number of results currently pending emission.
func (e *Emitter) QueueLen() int {
	return len(e.queue)
}

func (e *Emitter) worker(ctx context.Context) {
	defer e.wg.Done()

	for e.running.Load() {
		select {
		case <-ctx.Done():
			e.drain()
			return
		case it := <-e.queue:
			e.doEmit(it)
			e.emitted.Add(1)
		case <-time.After(workerPopTimeout):
			continue
		}
	}
	e.drain()
}

// drain flushes any results still queued at shutdown time, best-effort.
func (e *Emitter) drain() {
	for {
		select {
		case it := <-e.queue:
			e.doEmit(it)
			e.emitted.Add(1)
		default:
			return
		}
	}
}

func (e *Emitter) doEmit(it item) {
	displayText := e.formatter.DisplayText(it.text, it.result)

	fmt.Fprintln(os.Stdout, displayText)

	if e.broadcaster != nil {
		if err := e.broadcaster.BroadcastTranscription(it.result, it.newWords); err != nil {
			e.errors.Add(1)
			logging.Warn("broadcast emission failed", "error", err)
		}
	}
}
