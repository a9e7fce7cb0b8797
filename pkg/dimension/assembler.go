package dimension

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mchmarny/lingopulse/pkg/infer"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const modelTimeoutDefault = 20 * time.Second

// ModelSet names the remote model behind each model-backed dimension.
// An empty name disables that dimension (it stays at its neutral default).
type ModelSet struct {
	Valence         string `yaml:"valence" json:"valence"`
	TemporalBleed   string `yaml:"temporal_bleed" json:"temporal_bleed"`
	AgencyReversal  string `yaml:"agency_reversal" json:"agency_reversal"`
	MetaphorDensity string `yaml:"metaphor_density" json:"metaphor_density"`
}

// Failure records a model-backed scorer that fell back to its neutral
// default. Failures are ordinary values, not errors: the vector is always
// complete and usable regardless.
type Failure struct {
	Dimension Dimension `json:"dimension"`
	Err       error     `json:"-"`
	Reason    string    `json:"reason"`
}

// Assembly is the full scoring outcome for one text unit: the fixed-schema
// vector plus the per-scorer detail and any model fallbacks.
type Assembly struct {
	Vector      *Vector               `json:"vector"`
	Certainty   CertaintyResult       `json:"certainty"`
	Pronouns    PronounResult         `json:"pronouns"`
	Sacred      SacredProfaneResult   `json:"sacred_profane"`
	Compression TimeCompressionResult `json:"time_compression"`
	Proximity   ProximityResult       `json:"temporal_proximity"`
	Failures    []Failure             `json:"failures,omitempty"`
}

// Vectorizer composes every dimension scorer into one fixed-schema vector
// per text unit. It is stateless and holds no store handles; persistence is
// the caller's job.
type Vectorizer struct {
	scorer  infer.Scorer
	models  ModelSet
	clock   clockwork.Clock
	timeout time.Duration
}

// VectorizerOption tunes a Vectorizer.
type VectorizerOption func(*Vectorizer)

// WithClock overrides the clock used for the proximity reference year.
func WithClock(c clockwork.Clock) VectorizerOption {
	return func(v *Vectorizer) { v.clock = c }
}

// WithModelTimeout bounds each individual model call.
func WithModelTimeout(d time.Duration) VectorizerOption {
	return func(v *Vectorizer) { v.timeout = d }
}

// NewVectorizer creates a Vectorizer. A nil scorer leaves every model-backed
// dimension at its neutral default.
func NewVectorizer(scorer infer.Scorer, models ModelSet, opts ...VectorizerOption) *Vectorizer {
	v := &Vectorizer{
		scorer:  scorer,
		models:  models,
		clock:   clockwork.NewRealClock(),
		timeout: modelTimeoutDefault,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Vectorize scores text on every dimension. Lexical scorers always run;
// model-backed scorers run only when withModels is set, each under its own
// timeout, and one scorer's failure never blocks collection of the others.
func (v *Vectorizer) Vectorize(ctx context.Context, text string, withModels bool) *Assembly {
	tokens := Tokenize(text)
	refYear := v.clock.Now().UTC().Year()

	a := &Assembly{
		Certainty:   ScoreCertainty(tokens),
		Pronouns:    ScorePronouns(tokens),
		Sacred:      ScoreSacredProfane(text),
		Compression: ScoreTimeCompression(text),
		Proximity:   ScoreTemporalProximity(text, refYear),
	}

	vec := &Vector{
		Certainty:         a.Certainty.Score,
		PronounFirst:      a.Pronouns.First,
		PronounThird:      a.Pronouns.Third,
		PronounCollective: a.Pronouns.Collective,
		SacredProfane:     a.Sacred.Score,
		TimeCompression:   a.Compression.Score,
		TemporalProximity: a.Proximity.Score,
	}

	if withModels && v.scorer != nil {
		calls := []struct {
			dim    Dimension
			model  string
			signed bool
			target *float64
		}{
			{EmotionalValence, v.models.Valence, true, &vec.Valence},
			{TemporalBleed, v.models.TemporalBleed, false, &vec.TemporalBleed},
			{AgencyReversal, v.models.AgencyReversal, false, &vec.AgencyReversal},
			{MetaphorDensity, v.models.MetaphorDensity, false, &vec.MetaphorDensity},
		}

		failures := make([]*Failure, len(calls))
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range calls {
			if c.model == "" {
				continue
			}
			i, c := i, c
			g.Go(func() error {
				cctx, cancel := context.WithTimeout(gctx, v.timeout)
				defer cancel()
				res, err := v.scorer.Score(cctx, c.model, text)
				if err != nil {
					failures[i] = &Failure{Dimension: c.dim, Err: err, Reason: err.Error()}
					return nil // degrade to neutral, keep the others going
				}
				lo := 0.0
				if c.signed {
					lo = -1.0
				}
				*c.target = clamp(res.Score, lo, 1)
				return nil
			})
		}
		_ = g.Wait() // goroutines never return errors

		for _, f := range failures {
			if f != nil {
				log.Debugf("scorer %s unavailable, using neutral default: %v", f.Dimension, f.Err)
				a.Failures = append(a.Failures, *f)
			}
		}
	}

	a.Vector = vec.Round()
	return a
}
