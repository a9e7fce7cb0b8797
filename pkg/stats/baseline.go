package stats

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// ZeroVarianceZScore is the sentinel z-score reported when an observation
// deviates from a zero-variance baseline. The value is a convention, not a
// bound; override it if a different magnitude suits downstream consumers.
var ZeroVarianceZScore = 10.0

// Baseline is the descriptive distribution of one dimension over a reference
// window, one observation per day.
type Baseline struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P90  float64 `json:"p90"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	Max  float64 `json:"max"`

	sorted []float64
}

// Assessment places one observed value against a baseline.
type Assessment struct {
	Value          float64 `json:"value"`
	ZScore         float64 `json:"z_score"`
	PercentileRank float64 `json:"percentile_rank"`
	AboveP90       bool    `json:"above_p90"`
	AboveP95       bool    `json:"above_p95"`
}

// NewBaseline computes the reference distribution over samples.
func NewBaseline(samples []float64) (*Baseline, error) {
	if len(samples) == 0 {
		return nil, errors.New("baseline requires at least one sample")
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	b := &Baseline{
		N:      len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Std:    stat.PopStdDev(sorted, nil),
		P50:    stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
		P99:    stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
		sorted: sorted,
	}
	if b.N == 1 {
		b.Std = 0
	}
	return b, nil
}

// ZScore returns how many standard deviations x sits from the baseline mean.
// A zero-variance baseline yields 0 for an exact match and the signed
// ZeroVarianceZScore sentinel otherwise.
func (b *Baseline) ZScore(x float64) float64 {
	diff := x - b.Mean
	if b.Std == 0 {
		if diff == 0 {
			return 0
		}
		return math.Copysign(ZeroVarianceZScore, diff)
	}
	return diff / b.Std
}

// PercentileRank returns the share of baseline samples strictly below x,
// as a percentage.
func (b *Baseline) PercentileRank(x float64) float64 {
	below := sort.SearchFloat64s(b.sorted, x)
	return float64(below) / float64(b.N) * 100
}

// Assess places x against the baseline.
func (b *Baseline) Assess(x float64) *Assessment {
	return &Assessment{
		Value:          x,
		ZScore:         b.ZScore(x),
		PercentileRank: b.PercentileRank(x),
		AboveP90:       x > b.P90,
		AboveP95:       x > b.P95,
	}
}
