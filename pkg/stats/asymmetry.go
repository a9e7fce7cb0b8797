package stats

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// AsymmetryWindowDefault is how many days on each side of a candidate day
// form the pre and post windows.
const AsymmetryWindowDefault = 3

const asymmetryEps = 1e-9

// AsymmetryScores measures, for every day, how much the level both before
// and after sits below the day's own value. Per dimension, the shortfalls of
// the pre-window mean and post-window mean against the candidate value are
// summed and normalized by the value's deviation from the long-run mean;
// the day's score is the average across dimensions. Days with no complete
// pre or post window, or with a value at the long-run mean, contribute 0.
func AsymmetryScores(series [][]float64, window int) ([]float64, error) {
	if len(series) == 0 {
		return nil, errors.New("asymmetry requires at least one dimension series")
	}
	if window <= 0 {
		window = AsymmetryWindowDefault
	}

	n := len(series[0])
	for i, s := range series {
		if len(s) != n {
			return nil, errors.Errorf("dimension series %d has %d days, want %d", i, len(s), n)
		}
	}

	numDims := len(series)
	longRun := make([]float64, numDims)
	for d, s := range series {
		longRun[d] = stat.Mean(s, nil)
	}

	scores := make([]float64, n)
	for t := 0; t < n; t++ {
		if t-window < 0 || t+window >= n {
			continue
		}
		sum := 0.0
		for d, s := range series {
			denom := math.Abs(s[t] - longRun[d])
			if denom < asymmetryEps {
				continue
			}
			pre := stat.Mean(s[t-window:t], nil)
			post := stat.Mean(s[t+1:t+1+window], nil)
			sum += (math.Max(0, s[t]-pre) + math.Max(0, s[t]-post)) / denom
		}
		scores[t] = sum / float64(numDims)
	}
	return scores, nil
}
