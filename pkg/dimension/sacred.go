package dimension

import "strings"

// SacredProfane detects religious/existential language against doom,
// nihilism, and despair language. The ratio (sacred - profane) / total is
// gated by marker density so a single word in a long post carries little
// signal. Score range [-1,1].

var (
	sacredMarkers = []string{
		"god", "pray", "prayer", "praying", "prayers",
		"miracle", "miraculous", "divine", "holy",
		"blessed", "blessing", "faith", "believe",
		"heaven", "salvation", "save us",
		"lord", "jesus", "christ", "amen",
		"sacred", "spiritual", "soul",
		"god willing", "god help us", "thank god",
		"oh god", "my god", "oh my god",
	}

	profaneMarkers = []string{
		"dead", "dying", "death", "killed", "killing",
		"doomed", "doom", "apocalypse", "apocalyptic",
		"catastrophe", "catastrophic", "disaster",
		"collapse", "collapsing", "collapsed",
		"end times", "the end", "endgame",
		"finished", "done for", "game over",
		"no hope", "hopeless", "lost cause",
		"fuck", "fucked", "shit", "damn", "hell",
	}

	nihilismMarkers = []string{
		"we're cooked", "it's over", "its over",
		"we're done", "it's done", "already over",
		"too late", "nothing matters", "pointless",
		"give up", "giving up", "gave up",
		"lost", "losing", "can't win",
		"no point", "what's the point", "why bother",
		"inevitable", "unavoidable", "inescapable",
		"resistance is futile", "fighting a losing battle",
		"accept defeat", "surrender", "capitulate",
	}

	despairMarkers = []string{
		"bleak", "grim", "dire", "hopeless",
		"depressing", "depressed", "depression",
		"miserable", "suffering", "pain",
		"dark", "darkness", "black pill",
		"give in", "giving in", "acceptance",
		"resigned", "resignation", "fatalistic",
		"helpless", "powerless", "defeated",
	}
)

// SacredProfaneResult carries the score, per-class counts, and the raw
// sacred/profane balance before density gating.
type SacredProfaneResult struct {
	Score         float64  `json:"score"`
	Ratio         float64  `json:"ratio"`
	SacredCount   int      `json:"sacred_count"`
	ProfaneCount  int      `json:"profane_count"`
	NihilismCount int      `json:"nihilism_count"`
	DespairCount  int      `json:"despair_count"`
	TotalMarkers  int      `json:"total_markers"`
	Detected      []string `json:"detected,omitempty"`
}

// ScoreSacredProfane scores raw text. Markers are matched as case-insensitive
// substrings so multi-word phrases ("god help us") register.
func ScoreSacredProfane(text string) SacredProfaneResult {
	r := SacredProfaneResult{}
	if strings.TrimSpace(text) == "" {
		return r
	}

	lower := strings.ToLower(text)
	r.SacredCount, r.Detected = countMarkers(lower, sacredMarkers, r.Detected)
	r.ProfaneCount, r.Detected = countMarkers(lower, profaneMarkers, r.Detected)
	r.NihilismCount, r.Detected = countMarkers(lower, nihilismMarkers, r.Detected)
	r.DespairCount, r.Detected = countMarkers(lower, despairMarkers, r.Detected)

	// nihilism and despair both read as profane for the balance
	profaneTotal := r.ProfaneCount + r.NihilismCount + r.DespairCount
	r.TotalMarkers = r.SacredCount + profaneTotal
	if r.TotalMarkers == 0 {
		return r
	}

	r.Ratio = float64(r.SacredCount-profaneTotal) / float64(r.TotalMarkers)

	// density gate: markers per 100 words, capped at 1
	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	intensity := clamp(float64(r.TotalMarkers)/float64(words)*100, 0, 1)
	r.Score = r.Ratio * intensity
	return r
}

func countMarkers(lower string, markers []string, detected []string) (int, []string) {
	n := 0
	for _, m := range markers {
		if strings.Contains(lower, m) {
			n++
			detected = append(detected, m)
		}
	}
	return n, detected
}
