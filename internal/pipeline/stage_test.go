package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStageProcessesAndForwardsItems(t *testing.T) {
	in := make(chan int, 4)
	out := make(chan int, 4)

	s := NewStage("double", in, out, func(i int) (int, bool, error) {
		return i * 2, true, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	in <- 3
	var got int
	select {
	case got = <-out:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for output")
	}
	assert.Equal(t, 6, got)

	stats := s.GetStats()
	assert.Equal(t, int64(1), stats.Processed)
	s.Stop(time.Second)
}

func TestStageSkipsWhenNotOk(t *testing.T) {
	in := make(chan int, 4)
	out := make(chan int, 4)

	s := NewStage("filter", in, out, func(i int) (int, bool, error) {
		return 0, i%2 == 0, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	in <- 1
	in <- 2

	select {
	case got := <-out:
		assert.Equal(t, 0, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for output")
	}

	assert.Eventually(t, func() bool {
		return s.GetStats().Skipped == 1
	}, time.Second, 10*time.Millisecond)

	s.Stop(time.Second)
}

func TestStageCountsErrors(t *testing.T) {
	in := make(chan int, 4)

	s := NewStage[int, int]("erroring", in, nil, func(i int) (int, bool, error) {
		return 0, false, errors.New("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	in <- 1

	assert.Eventually(t, func() bool {
		return s.GetStats().Errors == 1
	}, time.Second, 10*time.Millisecond)

	s.Stop(time.Second)
}

func TestStartTwiceIsNoop(t *testing.T) {
	in := make(chan int, 1)
	s := NewStage[int, int]("once", in, nil, func(i int) (int, bool, error) {
		return i, true, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.True(t, s.Start(ctx))
	assert.False(t, s.Start(ctx))
	s.Stop(time.Second)
}
