package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	assert.Nil(t, Diff(nil))
	assert.Nil(t, Diff([]float64{1}))
	assert.Equal(t, []float64{1, -3, 2}, Diff([]float64{0, 1, -2, 0}))
}

func TestSynchronizationScores_SpikeDay(t *testing.T) {
	spike := []float64{0, 0, 0, 1, 0, 0, 0}
	scores, err := SynchronizationScores([][]float64{spike}, ThresholdKDefault)
	require.NoError(t, err)
	require.Len(t, scores, len(spike))

	// no derivative history on the first day
	assert.Equal(t, 0.0, scores[0])
	// the spike's onset moves the delta, the spike day moves both
	assert.Equal(t, 0.5, scores[3])
	assert.Equal(t, 1.0, scores[4])
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestSynchronizationScores_MoreMovingDimensionsScoreHigher(t *testing.T) {
	spike := []float64{0, 0, 0, 1, 0, 0, 0}
	flat := []float64{0.2, 0.21, 0.2, 0.21, 0.2, 0.21, 0.2}

	one, err := SynchronizationScores([][]float64{spike, flat}, ThresholdKDefault)
	require.NoError(t, err)
	two, err := SynchronizationScores([][]float64{spike, spike}, ThresholdKDefault)
	require.NoError(t, err)

	assert.Greater(t, two[4], one[4])
}

func TestSynchronizationScores_Validation(t *testing.T) {
	_, err := SynchronizationScores(nil, 1.5)
	assert.Error(t, err)

	_, err = SynchronizationScores([][]float64{{1, 2}}, 1.5)
	assert.Error(t, err)

	_, err = SynchronizationScores([][]float64{{1, 2, 3}, {1, 2}}, 1.5)
	assert.Error(t, err)
}

func TestMovingAverage(t *testing.T) {
	in := []float64{0, 0, 3, 0, 0}
	out := MovingAverage(in, 3)
	assert.Equal(t, []float64{0, 1, 1, 1, 0}, out)

	// window 1 is a copy
	assert.Equal(t, in, MovingAverage(in, 1))

	// edges shrink to the in-range window
	out = MovingAverage([]float64{3, 0, 0}, 3)
	assert.InDelta(t, 1.5, out[0], 1e-9)
}

func TestMinMaxNormalize(t *testing.T) {
	out := MinMaxNormalize([]float64{2, 4, 6})
	assert.Equal(t, []float64{0, 0.5, 1}, out)

	// constant series normalizes to zeros
	assert.Equal(t, []float64{0, 0, 0}, MinMaxNormalize([]float64{5, 5, 5}))
	assert.Empty(t, MinMaxNormalize(nil))
}

func TestAsymmetryScores_SpikeDay(t *testing.T) {
	spike := []float64{0, 0, 0, 1, 0, 0, 0}
	scores, err := AsymmetryScores([][]float64{spike}, 3)
	require.NoError(t, err)
	require.Len(t, scores, len(spike))

	// only the spike day has both windows below it
	assert.Greater(t, scores[3], 0.0)
	for i, s := range scores {
		if i != 3 {
			assert.Equal(t, 0.0, s, i)
		}
	}
}

func TestAsymmetryScores_FlatSeries(t *testing.T) {
	flat := []float64{1, 1, 1, 1, 1, 1, 1}
	scores, err := AsymmetryScores([][]float64{flat}, 2)
	require.NoError(t, err)
	for _, s := range scores {
		assert.Equal(t, 0.0, s)
	}
}

func TestAsymmetryScores_Validation(t *testing.T) {
	_, err := AsymmetryScores(nil, 3)
	assert.Error(t, err)

	_, err = AsymmetryScores([][]float64{{1, 2, 3}, {1, 2}}, 3)
	assert.Error(t, err)
}
