package stats

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// SignificanceAlpha is the p-value cut for calling a difference
	// statistically significant.
	SignificanceAlpha = 0.05

	// ControlWindowsDefault is how many random control windows bound the
	// non-parametric check.
	ControlWindowsDefault = 20
)

// Comparison is the statistical contrast of corpus B against corpus A.
type Comparison struct {
	MeanA         float64 `json:"mean_a"`
	MeanB         float64 `json:"mean_b"`
	NA            int     `json:"n_a"`
	NB            int     `json:"n_b"`
	PercentChange float64 `json:"percent_change"`
	ChangeLabel   string  `json:"change_label"`
	TStat         float64 `json:"t_stat"`
	PValue        float64 `json:"p_value"`
	CohensD       float64 `json:"cohens_d"`
	EffectLabel   string  `json:"effect_label"`
	Significant   bool    `json:"significant"`
}

// Compare runs a two-sample t-test and effect-size analysis of b against a.
func Compare(a, b []float64) (*Comparison, error) {
	if len(a) < 2 || len(b) < 2 {
		return nil, errors.Errorf("comparison requires at least 2 samples per corpus, got %d and %d", len(a), len(b))
	}

	meanA, stdA := stat.Mean(a, nil), stat.PopStdDev(a, nil)
	meanB, stdB := stat.Mean(b, nil), stat.PopStdDev(b, nil)
	na, nb := float64(len(a)), float64(len(b))

	c := &Comparison{
		MeanA: meanA,
		MeanB: meanB,
		NA:    len(a),
		NB:    len(b),
	}

	if meanA != 0 {
		c.PercentChange = (meanB - meanA) / math.Abs(meanA) * 100
	}
	c.ChangeLabel = changeLabel(c.PercentChange)

	// pooled two-sample t with na+nb-2 degrees of freedom
	varA, varB := stat.Variance(a, nil), stat.Variance(b, nil)
	df := na + nb - 2
	pooled := math.Sqrt(((na-1)*varA + (nb-1)*varB) / df)
	if pooled > 0 {
		c.TStat = (meanB - meanA) / (pooled * math.Sqrt(1/na+1/nb))
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		c.PValue = 2 * (1 - t.CDF(math.Abs(c.TStat)))
	} else {
		c.PValue = 1
		if meanA != meanB {
			c.PValue = 0
		}
	}
	c.Significant = c.PValue < SignificanceAlpha

	if d := math.Sqrt((stdA*stdA + stdB*stdB) / 2); d > 0 {
		c.CohensD = (meanB - meanA) / d
	}
	c.EffectLabel = effectLabel(c.CohensD)

	return c, nil
}

func changeLabel(pct float64) string {
	switch abs := math.Abs(pct); {
	case abs >= 20:
		return "high"
	case abs >= 10:
		return "medium"
	case abs >= 5:
		return "low"
	default:
		return "negligible"
	}
}

func effectLabel(d float64) string {
	switch abs := math.Abs(d); {
	case abs >= 0.8:
		return "large"
	case abs >= 0.5:
		return "medium"
	case abs >= 0.2:
		return "small"
	default:
		return "negligible"
	}
}

// ControlResult is the outcome of the non-parametric control-window check.
type ControlResult struct {
	TargetMean float64 `json:"target_mean"`
	ControlMin float64 `json:"control_min"`
	ControlMax float64 `json:"control_max"`
	Controls   int     `json:"controls"`
	Outside    bool    `json:"outside"`
}

// ControlWindowCheck tests whether the mean of the target window
// series[targetStart : targetStart+targetLen] falls outside the range of
// means of controls random equal-length windows drawn from the rest of the
// series. A nil rng uses the package-level source.
func ControlWindowCheck(series []float64, targetStart, targetLen, controls int, rng *rand.Rand) (*ControlResult, error) {
	if targetLen <= 0 {
		return nil, errors.New("target window length must be positive")
	}
	if targetStart < 0 || targetStart+targetLen > len(series) {
		return nil, errors.Errorf("target window [%d,%d) out of series bounds %d", targetStart, targetStart+targetLen, len(series))
	}
	if controls <= 0 {
		controls = ControlWindowsDefault
	}

	// candidate control starts are every window that does not overlap the target
	var starts []int
	for s := 0; s+targetLen <= len(series); s++ {
		if s+targetLen <= targetStart || s >= targetStart+targetLen {
			starts = append(starts, s)
		}
	}
	if len(starts) == 0 {
		return nil, errors.New("no non-overlapping control windows available")
	}

	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}

	res := &ControlResult{
		TargetMean: stat.Mean(series[targetStart:targetStart+targetLen], nil),
		ControlMin: math.Inf(1),
		ControlMax: math.Inf(-1),
		Controls:   controls,
	}
	for i := 0; i < controls; i++ {
		s := starts[intn(len(starts))]
		m := stat.Mean(series[s:s+targetLen], nil)
		if m < res.ControlMin {
			res.ControlMin = m
		}
		if m > res.ControlMax {
			res.ControlMax = m
		}
	}
	res.Outside = res.TargetMean < res.ControlMin || res.TargetMean > res.ControlMax

	return res, nil
}
