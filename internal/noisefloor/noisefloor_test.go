package noisefloor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCalibratesAfterCalibSecs(t *testing.T) {
	t.Parallel()

	tr := New(1.5)
	assert.False(t, tr.IsCalibrated())

	tr.AbsorbBootstrap(0.01, 0.5)
	tr.AbsorbBootstrap(0.02, 0.5)
	assert.False(t, tr.IsCalibrated())

	tr.AbsorbBootstrap(0.015, 0.5)
	assert.True(t, tr.IsCalibrated())

	floor, ok := tr.Get()
	assert.True(t, ok)
	assert.InDelta(t, 0.015, floor, 1e-6)
}

func TestTrackerGetBeforeCalibrationReturnsFalse(t *testing.T) {
	t.Parallel()

	tr := New(5.0)
	floor, ok := tr.Get()
	assert.False(t, ok)
	assert.Equal(t, float32(0), floor)
}

func TestTrackerUpdateRecomputesAfterInterval(t *testing.T) {
	t.Parallel()

	tr := New(0.1)
	tr.AbsorbBootstrap(0.01, 0.2)
	floor, _ := tr.Get()
	assert.InDelta(t, 0.01, floor, 1e-6)

	for i := 0; i < 20; i++ {
		tr.Update(0.01)
	}
	for i := 0; i < updateInterval; i++ {
		tr.Update(0.05)
	}

	newFloor, ok := tr.Get()
	assert.True(t, ok)
	assert.Greater(t, newFloor, floor)
}

func TestClampJumpLimitsRatio(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, float32(10), clampJump(1, 10, 10), 1e-6)
	assert.InDelta(t, float32(50), clampJump(1, 1000, 50), 1e-6)
	assert.InDelta(t, float32(0.02), clampJump(1, 0.001, 50), 1e-6)
}
