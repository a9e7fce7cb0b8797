package dimension

// PronounFlip measures the distribution of pronoun use across first-person,
// third-person, and collective categories. Each score is the category's
// fraction of all pronoun occurrences; the three sum to 1.0 when any pronoun
// is present and are all 0 otherwise.

var (
	firstPersonPronouns = newMarkerSet(
		"i", "me", "my", "mine", "myself",
	)

	thirdPersonPronouns = newMarkerSet(
		"he", "she", "him", "her", "his", "hers", "himself", "herself",
	)

	collectivePronouns = newMarkerSet(
		"we", "us", "our", "ours", "ourselves",
		"they", "them", "their", "theirs", "themselves",
	)
)

// PronounResult carries the three pronoun distribution scores and raw counts.
type PronounResult struct {
	First           float64 `json:"first_person_score"`
	Third           float64 `json:"third_person_score"`
	Collective      float64 `json:"collective_score"`
	FirstCount      int     `json:"first_person_count"`
	ThirdCount      int     `json:"third_person_count"`
	CollectiveCount int     `json:"collective_count"`
	TotalPronouns   int     `json:"total_pronouns"`
}

// ScorePronouns scores tokenized text for pronoun distribution.
// Unlike the certainty markers, repeated pronouns count every occurrence.
func ScorePronouns(tokens []string) PronounResult {
	r := PronounResult{}
	for _, w := range tokens {
		switch {
		case firstPersonPronouns[w]:
			r.FirstCount++
		case thirdPersonPronouns[w]:
			r.ThirdCount++
		case collectivePronouns[w]:
			r.CollectiveCount++
		}
	}

	r.TotalPronouns = r.FirstCount + r.ThirdCount + r.CollectiveCount
	if r.TotalPronouns == 0 {
		return r
	}

	total := float64(r.TotalPronouns)
	r.First = float64(r.FirstCount) / total
	r.Third = float64(r.ThirdCount) / total
	r.Collective = float64(r.CollectiveCount) / total
	return r
}
