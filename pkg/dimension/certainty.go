package dimension

// CertaintyCollapse measures the shift from uncertain language (if/maybe)
// toward certain language (when/will). Score range [-1,1]; exactly 0 when
// no markers are present.

var (
	uncertaintyMarkers = newMarkerSet(
		"if", "maybe", "possibly", "perhaps", "could", "might",
		"uncertain", "unclear", "unsure", "probably", "likely",
	)

	certaintyMarkers = newMarkerSet(
		"when", "will", "definitely", "certainly", "already",
		"must", "always", "never", "confirmed", "proven",
		"guaranteed", "surely", "absolutely",
	)
)

// CertaintyResult carries the certainty collapse score and its marker counts.
type CertaintyResult struct {
	Score          float64 `json:"score"`
	CertainCount   int     `json:"certain_count"`
	UncertainCount int     `json:"uncertain_count"`
	TotalMarkers   int     `json:"total_markers"`
}

// ScoreCertainty scores tokenized text for certainty collapse.
// Distinct marker words are counted once each.
func ScoreCertainty(tokens []string) CertaintyResult {
	r := CertaintyResult{}
	if len(tokens) == 0 {
		return r
	}

	seen := make(map[string]bool, len(tokens))
	for _, w := range tokens {
		if seen[w] {
			continue
		}
		seen[w] = true
		if certaintyMarkers[w] {
			r.CertainCount++
		}
		if uncertaintyMarkers[w] {
			r.UncertainCount++
		}
	}

	r.TotalMarkers = r.CertainCount + r.UncertainCount
	if r.TotalMarkers == 0 {
		return r
	}

	r.Score = float64(r.CertainCount-r.UncertainCount) / float64(r.TotalMarkers)
	return r
}

func newMarkerSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
