package matching

import "sort"

// Rankable is implemented by match results that can be ordered.
type Rankable interface {
	Key() string
	Score() float64
}

// RankTop sorts matches descending by score, breaking ties by ascending key
// so that repeated calls on identical input always return identical order,
// and returns the first topK entries.
func RankTop[M Rankable](matches []M, topK int) []M {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score() != matches[j].Score() {
			return matches[i].Score() > matches[j].Score()
		}
		return matches[i].Key() < matches[j].Key()
	})

	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	return matches
}
