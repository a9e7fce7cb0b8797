package dimension

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TemporalProximity measures how imminent predicted events feel. The
// category is picked by strict priority (immediate > impending > near-term >
// long-term); text with no temporal marker at all scores the neutral 0.5.
// Amplifier/hedge words are counted as auxiliary signals only and never fold
// into the primary score.

// ProximityCategory names the winning urgency bucket.
type ProximityCategory string

const (
	ProximityImmediate   ProximityCategory = "immediate"
	ProximityImpending   ProximityCategory = "impending"
	ProximityNearTerm    ProximityCategory = "near-term"
	ProximityLongTerm    ProximityCategory = "long-term"
	ProximityUnspecified ProximityCategory = "unspecified"

	proximityScoreImmediate   = 1.0
	proximityScoreImpending   = 0.66
	proximityScoreNearTerm    = 0.33
	proximityScoreLongTerm    = 0.0
	proximityScoreUnspecified = 0.5
)

var (
	immediateMarkers = []string{
		"now", "today", "currently", "right now", "at this moment",
		"as we speak", "this instant", "happening now", "ongoing",
		"tomorrow", "tonight", "this morning", "this afternoon",
	}

	impendingMarkers = []string{
		"soon", "about to", "coming", "imminent", "any day now",
		"this week", "in days", "very soon", "any minute",
		"on the verge", "brink", "edge of", "incoming",
	}

	nearTermMarkers = []string{
		"next month", "next quarter", "next week",
		"this quarter", "this month", "this year",
		"coming months", "coming weeks", "coming quarters",
		"few weeks", "few months", "near future", "short term",
		"by summer", "by fall", "by winter", "by spring",
		"q1", "q2", "q3", "q4",
	}

	longTermMarkers = []string{
		"next year", "eventually", "someday", "long term",
		"in the future", "down the road", "years from now",
		"decade", "decades",
	}

	amplifierMarkers = newMarkerSet(
		"very", "extremely", "definitely", "absolutely", "certainly",
		"really", "truly", "clearly", "obviously", "undoubtedly",
		"inevitably", "surely", "guaranteed",
	)

	hedgeMarkers = newMarkerSet(
		"might", "maybe", "possibly", "could", "potentially",
		"perhaps", "probably", "likely", "may", "seems",
		"appears", "suggests", "indicates",
	)

	yearRegEx = regexp.MustCompile(`\b(20\d{2})\b`)
)

// ProximityResult carries the proximity score, its winning category, per
// bucket marker counts, and the auxiliary amplifier/hedge counts.
type ProximityResult struct {
	Score          float64           `json:"score"`
	Category       ProximityCategory `json:"category"`
	ImmediateCount int               `json:"immediate_count"`
	ImpendingCount int               `json:"impending_count"`
	NearTermCount  int               `json:"near_term_count"`
	LongTermCount  int               `json:"long_term_count"`
	TotalMarkers   int               `json:"total_markers"`
	AmplifierCount int               `json:"amplifier_count"`
	HedgeCount     int               `json:"hedge_count"`
	Detected       []string          `json:"detected,omitempty"`
}

// ScoreTemporalProximity scores raw text. Explicit 4-digit year mentions are
// mapped to urgency buckets by their offset from refYear: the current year
// reads as immediate, next year impending, within three years near-term, and
// anything further long-term.
func ScoreTemporalProximity(text string, refYear int) ProximityResult {
	r := ProximityResult{Score: proximityScoreUnspecified, Category: ProximityUnspecified}
	if strings.TrimSpace(text) == "" {
		return r
	}

	lower := strings.ToLower(text)
	r.ImmediateCount, r.Detected = countMarkers(lower, immediateMarkers, r.Detected)
	r.ImpendingCount, r.Detected = countMarkers(lower, impendingMarkers, r.Detected)
	r.NearTermCount, r.Detected = countMarkers(lower, nearTermMarkers, r.Detected)
	r.LongTermCount, r.Detected = countMarkers(lower, longTermMarkers, r.Detected)

	for _, m := range yearRegEx.FindAllString(text, -1) {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		switch {
		case year <= refYear:
			r.ImmediateCount++
		case year == refYear+1:
			r.ImpendingCount++
		case year <= refYear+3:
			r.NearTermCount++
		default:
			r.LongTermCount++
		}
		r.Detected = append(r.Detected, fmt.Sprintf("year:%d", year))
	}

	r.TotalMarkers = r.ImmediateCount + r.ImpendingCount + r.NearTermCount + r.LongTermCount

	switch {
	case r.ImmediateCount > 0:
		r.Score, r.Category = proximityScoreImmediate, ProximityImmediate
	case r.ImpendingCount > 0:
		r.Score, r.Category = proximityScoreImpending, ProximityImpending
	case r.NearTermCount > 0:
		r.Score, r.Category = proximityScoreNearTerm, ProximityNearTerm
	case r.LongTermCount > 0:
		r.Score, r.Category = proximityScoreLongTerm, ProximityLongTerm
	}

	// amplifiers/hedges only matter when a temporal marker anchors them
	if r.TotalMarkers > 0 {
		for _, w := range Tokenize(text) {
			if amplifierMarkers[w] {
				r.AmplifierCount++
			}
			if hedgeMarkers[w] {
				r.HedgeCount++
			}
		}
	}

	return r
}
