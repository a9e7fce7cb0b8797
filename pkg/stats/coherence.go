package stats

import (
	"github.com/pkg/errors"
)

const (
	// SyncWeightDefault and AsymmetryWeightDefault combine the two signals
	// into the event coherence index.
	SyncWeightDefault      = 0.7
	AsymmetryWeightDefault = 0.3

	// SmoothingWindowDefault is the centered moving-average window applied
	// to the composite.
	SmoothingWindowDefault = 3

	// RegimeThresholdDefault marks a day as an event regime.
	RegimeThresholdDefault = 0.5
)

// CoherenceOptions tune the event coherence composite. Zero values fall back
// to the documented defaults.
type CoherenceOptions struct {
	K               float64 `json:"k" yaml:"k"`
	SyncWeight      float64 `json:"sync_weight" yaml:"sync_weight"`
	AsymmetryWeight float64 `json:"asymmetry_weight" yaml:"asymmetry_weight"`
	AsymmetryWindow int     `json:"asymmetry_window" yaml:"asymmetry_window"`
	SmoothingWindow int     `json:"smoothing_window" yaml:"smoothing_window"`
	RegimeThreshold float64 `json:"regime_threshold" yaml:"regime_threshold"`
}

func (o *CoherenceOptions) setDefaults() {
	if o.K <= 0 {
		o.K = ThresholdKDefault
	}
	if o.SyncWeight <= 0 {
		o.SyncWeight = SyncWeightDefault
	}
	if o.AsymmetryWeight <= 0 {
		o.AsymmetryWeight = AsymmetryWeightDefault
	}
	if o.AsymmetryWindow <= 0 {
		o.AsymmetryWindow = AsymmetryWindowDefault
	}
	if o.SmoothingWindow <= 0 {
		o.SmoothingWindow = SmoothingWindowDefault
	}
	if o.RegimeThreshold <= 0 {
		o.RegimeThreshold = RegimeThresholdDefault
	}
}

// CoherenceSample is one day's composite event coherence reading.
type CoherenceSample struct {
	Day             string  `json:"day"`
	Synchronization float64 `json:"synchronization"`
	Asymmetry       float64 `json:"asymmetry"`
	Index           float64 `json:"event_coherence_index"`
	EventRegime     bool    `json:"event_regime"`
}

// EventCoherence combines cross-dimensional synchronization with min-max
// normalized pre/post asymmetry into one smoothed [0,1] index per day.
// days names each index of the aligned per-dimension series.
func EventCoherence(days []string, series [][]float64, opts CoherenceOptions) ([]*CoherenceSample, error) {
	opts.setDefaults()

	if len(series) == 0 {
		return nil, errors.New("coherence requires at least one dimension series")
	}
	if len(days) != len(series[0]) {
		return nil, errors.Errorf("got %d day labels for %d days of data", len(days), len(series[0]))
	}

	sync, err := SynchronizationScores(series, opts.K)
	if err != nil {
		return nil, err
	}
	asym, err := AsymmetryScores(series, opts.AsymmetryWindow)
	if err != nil {
		return nil, err
	}
	normAsym := MinMaxNormalize(asym)

	composite := make([]float64, len(days))
	for i := range composite {
		composite[i] = clamp01(opts.SyncWeight*sync[i] + opts.AsymmetryWeight*normAsym[i])
	}
	smoothed := MovingAverage(composite, opts.SmoothingWindow)

	out := make([]*CoherenceSample, len(days))
	for i, day := range days {
		idx := clamp01(smoothed[i])
		out[i] = &CoherenceSample{
			Day:             day,
			Synchronization: sync[i],
			Asymmetry:       normAsym[i],
			Index:           idx,
			EventRegime:     idx >= opts.RegimeThreshold,
		}
	}
	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
