// Package grouper clusters segments by transcription similarity: a greedy
// single pass over normalized Levenshtein distance, tolerant of the noise
// speech-to-text output carries between takes of the same line.
package grouper

import (
	"strings"

	"github.com/takecut/silencecutter/internal/types"
)

// Group clusters segments left-to-right: the first unused segment seeds a
// new group, and every later unused segment whose text is at least
// threshold-similar to the seed joins it.
func Group(segments []types.Segment, threshold float64) []types.Group {
	used := make([]bool, len(segments))
	var groups []types.Group

	for i := range segments {
		if used[i] {
			continue
		}
		used[i] = true
		members := []types.Segment{segments[i]}

		for j := i + 1; j < len(segments); j++ {
			if used[j] {
				continue
			}
			if Similarity(segments[i].Transcription.Text, segments[j].Transcription.Text) >= threshold {
				used[j] = true
				members = append(members, segments[j])
			}
		}

		groups = append(groups, types.Group{
			GroupID:     len(groups),
			Takes:       members,
			TextSummary: longestText(members),
		})
	}
	return groups
}

// Similarity returns 1 - normalized Levenshtein distance between two
// texts, after lower-casing and trimming both sides. Equal strings (after
// normalization) score 1.0; an empty side against a non-empty side scores
// 0.0; both empty scores 1.0.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	ra, rb := []rune(a), []rune(b)
	dist := levenshtein(ra, rb)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

// levenshtein computes the classic edit distance between two rune slices
// with a two-row dynamic-programming table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// longestText returns the longest transcription text among members, ties
// broken by earliest (lowest) segment index.
func longestText(members []types.Segment) string {
	best := ""
	bestLen := -1
	bestIdx := -1
	for _, m := range members {
		l := len([]rune(m.Transcription.Text))
		if l > bestLen || (l == bestLen && (bestIdx == -1 || m.Index < bestIdx)) {
			best = m.Transcription.Text
			bestLen = l
			bestIdx = m.Index
		}
	}
	return best
}
