package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDays(n int) []string {
	days := make([]string, n)
	for i := range days {
		days[i] = fmt.Sprintf("2024-03-%02d", i+1)
	}
	return days
}

func TestEventCoherence_Bounds(t *testing.T) {
	series := [][]float64{
		{0, 0, 0, 1, 0, 0, 0},
		{0.1, 0.2, 0.1, 0.9, 0.1, 0.2, 0.1},
	}
	samples, err := EventCoherence(testDays(7), series, CoherenceOptions{})
	require.NoError(t, err)
	require.Len(t, samples, 7)

	for _, s := range samples {
		assert.GreaterOrEqual(t, s.Index, 0.0, s.Day)
		assert.LessOrEqual(t, s.Index, 1.0, s.Day)
		assert.Equal(t, s.Index >= RegimeThresholdDefault, s.EventRegime, s.Day)
	}
}

func TestEventCoherence_SpikeDominates(t *testing.T) {
	series := [][]float64{
		{0, 0, 0, 1, 0, 0, 0},
		{0, 0, 0, 1, 0, 0, 0},
	}
	samples, err := EventCoherence(testDays(7), series, CoherenceOptions{})
	require.NoError(t, err)

	// the smoothed peak sits on the spike or its immediate successor
	max := 0
	for i, s := range samples {
		if s.Index > samples[max].Index {
			max = i
		}
	}
	assert.Contains(t, []int{3, 4}, max)
	assert.Greater(t, samples[max].Index, samples[0].Index)
	assert.Equal(t, 1.0, samples[3].Asymmetry) // normalized peak
}

func TestEventCoherence_WeightsConfigurable(t *testing.T) {
	series := [][]float64{{0, 0, 0, 1, 0, 0, 0}}

	// all weight on synchronization, no smoothing
	samples, err := EventCoherence(testDays(7), series, CoherenceOptions{
		SyncWeight:      1,
		AsymmetryWeight: 1e-9,
		SmoothingWindow: 1,
	})
	require.NoError(t, err)
	assert.InDelta(t, samples[4].Synchronization, samples[4].Index, 1e-6)
}

func TestEventCoherence_Validation(t *testing.T) {
	_, err := EventCoherence(testDays(3), nil, CoherenceOptions{})
	assert.Error(t, err)

	_, err = EventCoherence(testDays(2), [][]float64{{1, 2, 3}}, CoherenceOptions{})
	assert.Error(t, err)
}
