package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestRecorderRecordOperation(t *testing.T) {
	t.Parallel()

	r := NewTestRecorder()
	r.RecordOperation("decode", "success")
	r.RecordOperation("decode", "success")
	r.RecordOperation("decode", "error")

	assert.Equal(t, 2, r.GetOperationCount("decode", "success"))
	assert.Equal(t, 1, r.GetOperationCount("decode", "error"))
	assert.Equal(t, 0, r.GetOperationCount("decode", "dropped"))
}

func TestTestRecorderRecordDuration(t *testing.T) {
	t.Parallel()

	r := NewTestRecorder()
	r.RecordDuration("infer", 0.1)
	r.RecordDuration("infer", 0.2)

	durations := r.GetDurations("infer")
	require.Len(t, durations, 2)
	assert.InDelta(t, 0.1, durations[0], 1e-9)
	assert.InDelta(t, 0.2, durations[1], 1e-9)
	assert.Nil(t, r.GetDurations("missing"))
}

func TestTestRecorderThreadSafety(t *testing.T) {
	t.Parallel()

	r := NewTestRecorder()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				r.RecordOperation("concurrent", "success")
				r.RecordDuration("concurrent", 0.001)
				r.RecordError("concurrent", "test")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, r.GetOperationCount("concurrent", "success"))
	assert.Len(t, r.GetDurations("concurrent"), 1000)
	assert.Equal(t, 1000, r.GetErrorCount("concurrent", "test"))
}
