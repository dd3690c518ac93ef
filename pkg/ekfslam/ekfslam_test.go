package ekfslam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incherre/slam-bot/pkg/landmark"
)

func TestStateDimGrowsWithLandmarks(t *testing.T) {
	e := New()
	require.Equal(t, 3, e.StateDim())

	e.Update(0, 0, []Observation{{X: 5, Y: 0, Kind: landmark.Spike}})
	assert.Equal(t, 5, e.StateDim())
	assert.Equal(t, e.covariance.Rows(), e.StateDim())
	assert.Equal(t, e.covariance.Cols(), e.StateDim())
}

func TestCovarianceStaysSymmetric(t *testing.T) {
	e := New()
	e.Update(0.1, 1, []Observation{{X: 5, Y: 0, Kind: landmark.Spike}})
	e.Update(0.1, 1, []Observation{{X: 5, Y: 0, Kind: landmark.Spike}})
	assert.True(t, e.covariance.IsSymmetric(1e-4))
}

// S6 — adding two landmarks of distinct kinds.
func TestTwoLandmarkInsertion(t *testing.T) {
	e := New(WithInitialUncertainty(0.95), WithLandmarkThreshold(0))

	e.Update(0, 0, []Observation{{X: 20, Y: 0, Kind: landmark.Spike}})
	e.Update(0, 0, []Observation{{X: 0, Y: 20, Kind: landmark.Ransac}})

	require.Equal(t, 7, len(e.state))
	assert.InDelta(t, 0, e.state[0], 1e-4)
	assert.InDelta(t, 0, e.state[1], 1e-4)
	assert.InDelta(t, 0, e.state[2], 1e-4)
	assert.InDelta(t, 20, e.state[3], 1e-4)
	assert.InDelta(t, 0, e.state[4], 1e-4)
	assert.InDelta(t, 0, e.state[5], 1e-4)
	assert.InDelta(t, 20, e.state[6], 1e-4)

	assert.InDelta(t, 1.15, e.covariance[3][3], 1e-4)
	assert.InDelta(t, 0.95, e.covariance[4][4], 1e-4)
	assert.InDelta(t, 1.15, e.covariance[5][5], 1e-4)
	assert.InDelta(t, 0.95, e.covariance[6][6], 1e-4)

	assert.InDelta(t, 0.95, e.covariance[0][3], 1e-4)
	assert.InDelta(t, 0.95, e.covariance[1][4], 1e-4)
}

func TestInvariantViolationPanics(t *testing.T) {
	e := New()
	e.kinds = append(e.kinds, landmark.Spike)
	assert.Panics(t, func() { e.assertInvariants() })
}

func TestSameKindLandmarkReassociates(t *testing.T) {
	e := New(WithLandmarkThreshold(0), WithInnovationLambda(10))
	e.Update(0, 0, []Observation{{X: 10, Y: 0, Kind: landmark.Spike}})
	require.Equal(t, 1, e.LandmarkCount())

	e.Update(0, 0, []Observation{{X: 10.05, Y: 0.05, Kind: landmark.Spike}})
	assert.Equal(t, 1, e.LandmarkCount(), "close re-observation of the same kind should associate, not insert a second landmark")
	assert.Equal(t, 2, e.LandmarkCounts()[0])
}

func TestDifferentKindNeverAssociates(t *testing.T) {
	e := New(WithLandmarkThreshold(0))
	e.Update(0, 0, []Observation{{X: 10, Y: 0, Kind: landmark.Spike}})
	e.Update(0, 0, []Observation{{X: 10, Y: 0, Kind: landmark.Ransac}})
	assert.Equal(t, 2, e.LandmarkCount())
}
