package emit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/orangepi5/micasr/internal/decode"
	"github.com/orangepi5/micasr/internal/format"
	"github.com/orangepi5/micasr/internal/timeline"
	"github.com/stretchr/testify/assert"
)

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *fakeBroadcaster) BroadcastTranscription(result *decode.Result, newWords []timeline.Word) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return assert.AnError
	}
	return nil
}

func (f *fakeBroadcaster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestEmitDeliversToQueueAndWorker(t *testing.T) {
	fmtr := format.New(format.Config{})
	bc := &fakeBroadcaster{}
	e := New(fmtr, bc, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.True(t, e.Start(ctx))

	assert.True(t, e.Emit("hello", &decode.Result{Text: "hello"}, nil))

	assert.Eventually(t, func() bool {
		return bc.count() == 1
	}, time.Second, 10*time.Millisecond)

	stats := e.GetStats()
	assert.Equal(t, int64(1), stats.Emitted)

	e.Stop(time.Second)
}

func TestEmitDropsWhenQueueFull(t *testing.T) {
	fmtr := format.New(format.Config{})
	e := New(fmtr, nil, 1)

	e.queue <- item{text: "blocker", result: &decode.Result{}}
	ok := e.Emit("overflow", &decode.Result{}, nil)
	assert.False(t, ok)

	stats := e.GetStats()
	assert.Equal(t, int64(1), stats.Dropped)
}

func TestStartTwiceReturnsFalse(t *testing.T) {
	fmtr := format.New(format.Config{})
	e := New(fmtr, nil, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.True(t, e.Start(ctx))
	assert.False(t, e.Start(ctx))
	e.Stop(time.Second)
}
