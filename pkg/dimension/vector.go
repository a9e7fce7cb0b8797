package dimension

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Dimension is one named linguistic signal reducing text to a scalar score.
type Dimension string

const (
	CertaintyCollapse Dimension = "certainty_collapse"
	PronounFirst      Dimension = "pronoun_first"
	PronounThird      Dimension = "pronoun_third"
	PronounCollective Dimension = "pronoun_collective"
	EmotionalValence  Dimension = "emotional_valence"
	TemporalBleed     Dimension = "temporal_bleed"
	TimeCompression   Dimension = "time_compression"
	SacredProfane     Dimension = "sacred_profane"
	TemporalProximity Dimension = "temporal_proximity"
	AgencyReversal    Dimension = "agency_reversal"
	MetaphorDensity   Dimension = "metaphor_density"

	// Precision is the number of decimals vector components are rounded
	// to before two vectors are compared for identity.
	Precision = 3
)

var (
	// Dimensions is the fixed vector schema, in component order.
	Dimensions = []Dimension{
		CertaintyCollapse,
		PronounFirst,
		PronounThird,
		PronounCollective,
		EmotionalValence,
		TemporalBleed,
		TimeCompression,
		SacredProfane,
		TemporalProximity,
		AgencyReversal,
		MetaphorDensity,
	}

	// signed dimensions range [-1,1], all others [0,1]
	signedDimensions = map[Dimension]bool{
		CertaintyCollapse: true,
		EmotionalValence:  true,
		SacredProfane:     true,
	}
)

// IsValid indicates whether d names a known dimension.
func (d Dimension) IsValid() bool {
	for _, k := range Dimensions {
		if k == d {
			return true
		}
	}
	return false
}

// Range returns the documented [min,max] bounds for the dimension.
func (d Dimension) Range() (float64, float64) {
	if signedDimensions[d] {
		return -1, 1
	}
	return 0, 1
}

// Vector is the fixed-schema tuple of all dimension scores for one text unit.
type Vector struct {
	Certainty         float64 `json:"certainty_collapse"`
	PronounFirst      float64 `json:"pronoun_first"`
	PronounThird      float64 `json:"pronoun_third"`
	PronounCollective float64 `json:"pronoun_collective"`
	Valence           float64 `json:"emotional_valence"`
	TemporalBleed     float64 `json:"temporal_bleed"`
	TimeCompression   float64 `json:"time_compression"`
	SacredProfane     float64 `json:"sacred_profane"`
	TemporalProximity float64 `json:"temporal_proximity"`
	AgencyReversal    float64 `json:"agency_reversal"`
	MetaphorDensity   float64 `json:"metaphor_density"`
}

// Values returns the components in schema order.
func (v *Vector) Values() []float64 {
	return []float64{
		v.Certainty,
		v.PronounFirst,
		v.PronounThird,
		v.PronounCollective,
		v.Valence,
		v.TemporalBleed,
		v.TimeCompression,
		v.SacredProfane,
		v.TemporalProximity,
		v.AgencyReversal,
		v.MetaphorDensity,
	}
}

// Get returns the component for the named dimension.
func (v *Vector) Get(d Dimension) (float64, error) {
	for i, k := range Dimensions {
		if k == d {
			return v.Values()[i], nil
		}
	}
	return 0, errors.Errorf("unknown dimension: %s", d)
}

// Round returns a copy with every component rounded to Precision decimals.
// Identity of two vectors is always decided on their rounded form.
func (v *Vector) Round() *Vector {
	r := *v
	r.Certainty = roundScore(v.Certainty)
	r.PronounFirst = roundScore(v.PronounFirst)
	r.PronounThird = roundScore(v.PronounThird)
	r.PronounCollective = roundScore(v.PronounCollective)
	r.Valence = roundScore(v.Valence)
	r.TemporalBleed = roundScore(v.TemporalBleed)
	r.TimeCompression = roundScore(v.TimeCompression)
	r.SacredProfane = roundScore(v.SacredProfane)
	r.TemporalProximity = roundScore(v.TemporalProximity)
	r.AgencyReversal = roundScore(v.AgencyReversal)
	r.MetaphorDensity = roundScore(v.MetaphorDensity)
	return &r
}

// Validate checks every component against its documented range.
func (v *Vector) Validate() error {
	vals := v.Values()
	for i, d := range Dimensions {
		lo, hi := d.Range()
		if vals[i] < lo || vals[i] > hi {
			return errors.Errorf("dimension %s out of range: %v not in [%v,%v]", d, vals[i], lo, hi)
		}
		if math.IsNaN(vals[i]) || math.IsInf(vals[i], 0) {
			return errors.Errorf("dimension %s is not finite: %v", d, vals[i])
		}
	}
	return nil
}

func (v *Vector) String() string {
	return fmt.Sprintf("certainty:%.3f first:%.3f third:%.3f coll:%.3f valence:%.3f bleed:%.3f comp:%.3f sacred:%.3f prox:%.3f agency:%.3f metaphor:%.3f",
		v.Certainty, v.PronounFirst, v.PronounThird, v.PronounCollective, v.Valence,
		v.TemporalBleed, v.TimeCompression, v.SacredProfane, v.TemporalProximity,
		v.AgencyReversal, v.MetaphorDensity)
}

func roundScore(v float64) float64 {
	p := math.Pow10(Precision)
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
