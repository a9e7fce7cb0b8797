package dimension

import "strings"

// TimeCompression detects acceleration panic and timeline distortion
// ("happening so fast", "can't keep up"). Base score is marker density per
// 100 words; co-occurrence of multiple distinct marker classes multiplies it
// (up to 1.4x) since agreement across classes is a stronger signal.
// Score range [0,1].

var (
	speedMarkers = []string{
		"so fast", "too fast", "happening fast", "moving fast",
		"rapidly", "accelerating", "speeding up", "breakneck",
		"lightning speed", "at pace", "unprecedented pace",
		"faster and faster", "gaining speed", "picking up speed",
	}

	timelineMarkers = []string{
		"feels like years", "feels like forever", "time is speeding up",
		"days feel like weeks", "weeks feel like months",
		"compressed timeline", "time compression",
		"yesterday feels like", "already feels like",
		"time flies", "where did the time go",
	}

	overwhelmMarkers = []string{
		"can't keep up", "can't follow", "barely keeping up",
		"struggling to keep up", "hard to keep up",
		"too much", "overwhelming", "overwhelmed",
		"drowning in", "buried in", "swamped",
		"information overload", "too much information",
		"everything at once", "all at once", "happening at once",
		"nonstop", "non-stop", "relentless",
		"can't process", "can't absorb", "head spinning",
	}

	intensityMarkers = []string{
		"exponential", "exponentially",
		"insane", "insanely", "crazy", "crazily",
		"unbelievable", "unbelievably",
		"unprecedented", "never seen",
		"breaking", "record", "historic",
	}
)

// TimeCompressionResult carries the score and per-class marker counts.
type TimeCompressionResult struct {
	Score             float64  `json:"score"`
	SpeedCount        int      `json:"speed_count"`
	TimelineCount     int      `json:"timeline_count"`
	OverwhelmCount    int      `json:"overwhelm_count"`
	IntensityCount    int      `json:"intensity_count"`
	TotalMarkers      int      `json:"total_markers"`
	CategoriesPresent int      `json:"categories_present"`
	Detected          []string `json:"detected,omitempty"`
}

// ScoreTimeCompression scores raw text for time compression signals.
func ScoreTimeCompression(text string) TimeCompressionResult {
	r := TimeCompressionResult{}
	words := len(strings.Fields(text))
	if words == 0 {
		return r
	}

	lower := strings.ToLower(text)
	r.SpeedCount, r.Detected = countMarkers(lower, speedMarkers, r.Detected)
	r.TimelineCount, r.Detected = countMarkers(lower, timelineMarkers, r.Detected)
	r.OverwhelmCount, r.Detected = countMarkers(lower, overwhelmMarkers, r.Detected)
	r.IntensityCount, r.Detected = countMarkers(lower, intensityMarkers, r.Detected)
	r.TotalMarkers = r.SpeedCount + r.TimelineCount + r.OverwhelmCount + r.IntensityCount

	for _, c := range []int{r.SpeedCount, r.TimelineCount, r.OverwhelmCount, r.IntensityCount} {
		if c > 0 {
			r.CategoriesPresent++
		}
	}

	base := clamp(float64(r.TotalMarkers)/float64(words)*100, 0, 1)
	multiplier := 1.0 + float64(r.CategoriesPresent)*0.1
	r.Score = clamp(base*multiplier, 0, 1)
	return r
}
