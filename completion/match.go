package completion

import (
	"sort"
	"strings"
)

// Match scores, from strongest to weakest. Candidates matching none of
// the classes are excluded entirely.
const (
	ScoreExact       = 100
	ScorePrefix      = 50
	ScoreSubsequence = 10
	ScoreUnranked    = 1 // empty query admits everything, unranked
)

type Match struct {
	Text  string
	Score int
}

// Rank classifies every candidate against the query and returns the
// surviving matches sorted by descending score, ties broken by
// case-insensitive candidate text.
func Rank(query string, candidates []string) []Match {
	folded := strings.ToLower(query)

	out := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		score, ok := classify(folded, strings.ToLower(c))
		if !ok {
			continue
		}
		out = append(out, Match{Text: c, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return strings.ToLower(out[i].Text) < strings.ToLower(out[j].Text)
	})
	return out
}

func classify(foldedQuery, foldedCandidate string) (int, bool) {
	if foldedQuery == "" {
		return ScoreUnranked, true
	}
	if foldedCandidate == foldedQuery {
		return ScoreExact, true
	}
	if sharedPrefix(foldedQuery, foldedCandidate) {
		return ScorePrefix, true
	}
	if IsSubsequence(foldedQuery, foldedCandidate) {
		return ScoreSubsequence, true
	}
	return 0, false
}

// sharedPrefix reports whether the two case-folded strings agree on a
// non-empty leading segment.
func sharedPrefix(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ra := []rune(a)
	rb := []rune(b)
	return ra[0] == rb[0]
}

// IsSubsequence reports whether needle's characters appear in the same
// relative order within hay, not necessarily contiguously. Two pointers:
// the needle pointer advances only on a character match, and the needle
// is a subsequence iff its pointer is exhausted by the end of hay.
func IsSubsequence(needle, hay string) bool {
	if needle == "" {
		return true
	}
	nr := []rune(needle)
	i := 0
	for _, r := range hay {
		if r == nr[i] {
			i++
			if i == len(nr) {
				return true
			}
		}
	}
	return false
}

// InlineCandidate implements the stricter ghost-text variant: only a true
// (non-exact) case-folded prefix match qualifies, and the suggestion is
// exactly the candidate's remainder after the query. With several
// qualifying candidates the case-insensitively smallest wins, matching
// the menu's tie order.
func InlineCandidate(query string, candidates []string) (string, bool) {
	if query == "" {
		return "", false
	}
	folded := strings.ToLower(query)
	queryLen := len([]rune(query))

	best := ""
	for _, c := range candidates {
		fc := strings.ToLower(c)
		if fc == folded || !strings.HasPrefix(fc, folded) {
			continue
		}
		if best == "" || strings.ToLower(c) < strings.ToLower(best) {
			best = c
		}
	}
	if best == "" {
		return "", false
	}

	rest := []rune(best)
	if queryLen >= len(rest) {
		return "", false
	}
	return string(rest[queryLen:]), true
}
