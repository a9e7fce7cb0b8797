package stats

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// ThresholdKDefault scales the delta standard deviation into the
// significant-movement threshold.
const ThresholdKDefault = 1.5

// Diff returns day-over-day deltas: out[i] = values[i+1] - values[i].
func Diff(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}

// SynchronizationScores scores each day by how many dimensions moved
// significantly at once. series holds one aligned daily sequence per
// dimension. A dimension counts once when its day-over-day delta exceeds
// k times that dimension's delta standard deviation, and once more when its
// delta-of-delta does; the day's score is the counted total over
// 2 x numDimensions, so it is always in [0,1]. The first two days carry no
// derivative history and score 0.
func SynchronizationScores(series [][]float64, k float64) ([]float64, error) {
	if len(series) == 0 {
		return nil, errors.New("synchronization requires at least one dimension series")
	}
	if k <= 0 {
		k = ThresholdKDefault
	}

	n := len(series[0])
	for i, s := range series {
		if len(s) != n {
			return nil, errors.Errorf("dimension series %d has %d days, want %d", i, len(s), n)
		}
	}
	if n < 3 {
		return nil, errors.Errorf("synchronization requires at least 3 days, got %d", n)
	}

	numDims := len(series)
	deltas := make([][]float64, numDims)
	accels := make([][]float64, numDims)
	deltaStd := make([]float64, numDims)
	accelStd := make([]float64, numDims)
	for d, s := range series {
		deltas[d] = Diff(s)
		accels[d] = Diff(deltas[d])
		deltaStd[d] = stat.PopStdDev(deltas[d], nil)
		accelStd[d] = stat.PopStdDev(accels[d], nil)
	}

	scores := make([]float64, n)
	for t := 1; t < n; t++ {
		count := 0
		for d := 0; d < numDims; d++ {
			if math.Abs(deltas[d][t-1]) > k*deltaStd[d] {
				count++
			}
			if t >= 2 && math.Abs(accels[d][t-2]) > k*accelStd[d] {
				count++
			}
		}
		scores[t] = float64(count) / float64(2*numDims)
	}
	return scores, nil
}

// MovingAverage smooths values with a centered window. Edges average over
// the in-range portion of the window.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	half := window / 2
	out := make([]float64, len(values))
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(values) {
			hi = len(values)
		}
		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// MinMaxNormalize rescales values into [0,1]. A constant series normalizes
// to all zeros.
func MinMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}
