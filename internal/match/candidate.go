package match

import (
	"sort"
)

// Candidate is a library item suggested for an unknown column.
type Candidate struct {
	ItemID string
	Task   string
	// Score is the normalized name similarity (0-1).
	Score float64
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every item id in index against column.
// Returns candidates sorted by score (descending).
func RankCandidates(column string, index map[string]string) CandidateList {
	candidates := make(CandidateList, 0, len(index))

	for id, task := range index {
		candidates = append(candidates, Candidate{
			ItemID: id,
			Task:   task,
			Score:  Similarity(column, id),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by item id for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].ItemID < c[j].ItemID
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}
	return c[:n]
}

// AboveThreshold returns candidates with score at or above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}
	return result
}

// ItemIDs returns the item ids of the candidates.
func (c CandidateList) ItemIDs() []string {
	out := make([]string, 0, len(c))
	for _, cand := range c {
		out = append(out, cand.ItemID)
	}

	return out
}

// Suggestion thresholds for unmapped columns.
const (
	// DefaultMinScore is the minimum similarity for a suggestion.
	DefaultMinScore = 0.6
	// DefaultMaxSuggestions caps suggestions per column.
	DefaultMaxSuggestions = 3
)

// Suggest returns up to DefaultMaxSuggestions item ids resembling column.
func Suggest(column string, index map[string]string) []string {
	return RankCandidates(column, index).AboveThreshold(DefaultMinScore).Top(DefaultMaxSuggestions).ItemIDs()
}
