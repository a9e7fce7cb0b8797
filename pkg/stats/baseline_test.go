package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseline(t *testing.T) {
	b, err := NewBaseline([]float64{1, 2, 1, 2, 1})
	require.NoError(t, err)

	assert.Equal(t, 5, b.N)
	assert.InDelta(t, 1.4, b.Mean, 1e-9)
	assert.InDelta(t, 0.4899, b.Std, 1e-4)
	assert.Equal(t, 2.0, b.Max)
	assert.Equal(t, 1.0, b.P50)
	assert.Equal(t, 2.0, b.P95)
}

func TestNewBaseline_Empty(t *testing.T) {
	_, err := NewBaseline(nil)
	assert.Error(t, err)
}

func TestBaselineAssess_ExtremeObservation(t *testing.T) {
	b, err := NewBaseline([]float64{1, 2, 1, 2, 1})
	require.NoError(t, err)

	a := b.Assess(10)
	assert.Greater(t, a.ZScore, 17.0)
	assert.True(t, a.AboveP95)
	assert.True(t, a.AboveP90)
	assert.Equal(t, 100.0, a.PercentileRank)
}

func TestBaselineAssess_TypicalObservation(t *testing.T) {
	b, err := NewBaseline([]float64{1, 2, 1, 2, 1})
	require.NoError(t, err)

	a := b.Assess(1.4)
	assert.InDelta(t, 0.0, a.ZScore, 1e-9)
	assert.False(t, a.AboveP95)
	assert.InDelta(t, 60.0, a.PercentileRank, 1e-9) // three of five samples below
}

func TestBaselineZScore_ZeroVariance(t *testing.T) {
	b, err := NewBaseline([]float64{0.5, 0.5, 0.5})
	require.NoError(t, err)

	assert.Equal(t, 0.0, b.ZScore(0.5))
	assert.Equal(t, ZeroVarianceZScore, b.ZScore(0.9))
	assert.Equal(t, -ZeroVarianceZScore, b.ZScore(0.1))
}

func TestBaselineZScore_SentinelOverridable(t *testing.T) {
	old := ZeroVarianceZScore
	ZeroVarianceZScore = 99
	defer func() { ZeroVarianceZScore = old }()

	b, err := NewBaseline([]float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, 99.0, b.ZScore(1))
}

func TestBaselinePercentileRank(t *testing.T) {
	b, err := NewBaseline([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	require.NoError(t, err)

	assert.Equal(t, 0.0, b.PercentileRank(0.5))
	assert.Equal(t, 50.0, b.PercentileRank(5.5))
	assert.Equal(t, 100.0, b.PercentileRank(11))
	// strictly-below rank: ties do not count
	assert.Equal(t, 40.0, b.PercentileRank(5))
}
