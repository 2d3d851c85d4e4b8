package iotrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEarlyStopper(t *testing.T) {
	assert := assert.New(t)
	s := newEarlyStopper(0.01)

	// first observation only sets the baseline
	assert.False(s.ShouldStop(0.10))

	// clear improvements keep training
	assert.False(s.ShouldStop(0.20))
	assert.False(s.ShouldStop(0.35))

	// improvement below the delta stops
	assert.True(s.ShouldStop(0.355))
}

func TestEarlyStopperRegression(t *testing.T) {
	assert := assert.New(t)
	s := newEarlyStopper(0.01)

	assert.False(s.ShouldStop(0.30))
	// a drop is not an improvement
	assert.True(s.ShouldStop(0.25))
}

func TestEarlyStopperZeroDelta(t *testing.T) {
	assert := assert.New(t)
	s := newEarlyStopper(0)

	assert.False(s.ShouldStop(0.30))
	// any improvement at all keeps going
	assert.False(s.ShouldStop(0.3000001))
	// a plateau stops
	assert.True(s.ShouldStop(0.3000001))
}

func TestSWAFoldMean(t *testing.T) {
	assert := assert.New(t)
	mean := make([]float64, 2)

	foldMean(mean, []float64{1, 10}, 1)
	foldMean(mean, []float64{3, 20}, 2)
	foldMean(mean, []float64{5, 30}, 3)

	assert.InDelta(3.0, mean[0], 1e-12)
	assert.InDelta(20.0, mean[1], 1e-12)
}

func TestSWALateVariable(t *testing.T) {
	assert := assert.New(t)
	swa := newSWAAverager()

	// head weights average over all three epochs, backbone weights
	// stay frozen for two epochs and join at the third
	swa.fold("head/w", []float64{2})
	swa.fold("head/w", []float64{4})

	swa.fold("head/w", []float64{6})
	swa.fold("backbone/w", []float64{9})

	assert.InDelta(4.0, swa.mean["head/w"][0], 1e-12)
	// a single observation is the mean itself, not shrunk by the
	// epochs the variable was absent
	assert.InDelta(9.0, swa.mean["backbone/w"][0], 1e-12)
}
