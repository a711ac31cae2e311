package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordInferenceComputesAverage(t *testing.T) {
	tr := New()
	tr.RecordInference(10)
	tr.RecordInference(20)

	snap := tr.GetStats()
	assert.Equal(t, 2, snap.TotalChunksProcessed)
	assert.Equal(t, 15.0, snap.AverageInferenceMs)
}

func TestRecordErrorComputesErrorRate(t *testing.T) {
	tr := New()
	tr.RecordInference(10)
	tr.RecordInference(10)
	tr.RecordError()

	snap := tr.GetStats()
	assert.Equal(t, 1, snap.Errors)
	assert.Equal(t, 0.5, snap.ErrorRate)
}

func TestResetClearsCounters(t *testing.T) {
	tr := New()
	tr.RecordInference(10)
	tr.RecordError()
	tr.Reset()

	snap := tr.GetStats()
	assert.Equal(t, 0, snap.TotalChunksProcessed)
	assert.Equal(t, 0, snap.Errors)
}

func TestGetStatsWithNoChunksHasZeroRates(t *testing.T) {
	tr := New()
	snap := tr.GetStats()
	assert.Equal(t, 0.0, snap.AverageInferenceMs)
	assert.Equal(t, 0.0, snap.ErrorRate)
}
