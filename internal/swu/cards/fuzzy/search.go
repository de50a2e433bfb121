// Package fuzzy scores free-text queries against card names.
package fuzzy

import (
	"math"
	"sort"
	"strings"
)

// Scorer scores a query against a candidate on a 0-100 scale.
type Scorer interface {
	Score(query, candidate string) int
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(query, candidate string) int

// Score implements Scorer.
func (f ScorerFunc) Score(query, candidate string) int {
	return f(query, candidate)
}

// PartialRatioScorer is the default Scorer.
var PartialRatioScorer Scorer = ScorerFunc(PartialRatio)

// PartialRatio returns how well the shorter of query and candidate aligns
// with its best-matching window of the longer one, on a 0-100 scale.
//
// Each window is compared with the Indel-normalized ratio (edit distance
// counting insertions and deletions). Matching is case-insensitive and
// rune-aware. An empty query scores 100 against anything.
func PartialRatio(query, candidate string) int {
	q := []rune(strings.ToLower(query))
	c := []rune(strings.ToLower(candidate))

	if len(q) == 0 {
		return 100
	}
	if len(c) == 0 {
		return 0
	}

	shorter, longer := q, c
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	m := len(shorter)

	best := 0.0
	// Windows start m-1 runes before the longer string so partial overlaps
	// at either edge are considered.
	for start := -(m - 1); start < len(longer); start++ {
		lo := max(0, start)
		hi := min(len(longer), start+m)

		score := Ratio(shorter, longer[lo:hi])
		if score > best {
			best = score
			if best >= 100 {
				break
			}
		}
	}

	return int(math.Round(best))
}

// Ratio returns the Indel-normalized similarity of a and b (0-100).
func Ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return float64(total-IndelDistance(a, b)) * 100 / float64(total)
}

// IndelDistance returns the minimum number of single-rune insertions and
// deletions needed to turn a into b: len(a) + len(b) - 2*LCS(a, b).
func IndelDistance(a, b []rune) int {
	return len(a) + len(b) - 2*longestCommonSubsequence(a, b)
}

func longestCommonSubsequence(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// SearchResult represents a fuzzy search match with its score.
type SearchResult struct {
	Item  string
	Score int
	Index int
}

// SearchOptions configures fuzzy search behavior.
type SearchOptions struct {
	// MaxResults limits the number of results returned (0 = unlimited)
	MaxResults int
	// MinScore sets minimum score threshold (0-100), inclusive
	MinScore int
}

// DefaultSearchOptions returns sensible default search options.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxResults: 5,
		MinScore:   60,
	}
}

// Search ranks plain strings against query.
// Returns results sorted by score (highest first), ties in input order.
func Search(query string, items []string, options SearchOptions) []SearchResult {
	results := make([]SearchResult, 0, len(items))

	for i, item := range items {
		score := PartialRatio(query, item)
		if score >= options.MinScore {
			results = append(results, SearchResult{
				Item:  item,
				Score: score,
				Index: i,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if options.MaxResults > 0 && len(results) > options.MaxResults {
		results = results[:options.MaxResults]
	}

	return results
}
