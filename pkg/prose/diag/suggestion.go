package diag

import (
	"fmt"
	"strings"
)

// SuggestName suggests a close match when an unknown name is referenced.
// It uses Levenshtein distance to find the most similar candidate, and only
// suggests when the distance is small enough to look like a typo.
func SuggestName(unknown string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string
	for _, c := range candidates {
		dist := levenshteinDistance(unknown, c)
		if dist < minDistance {
			minDistance = dist
			bestMatch = c
		}
	}

	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	if len(candidates) > 5 {
		return fmt.Sprintf("Known names include: %s, ...", strings.Join(candidates[:5], ", "))
	}
	return fmt.Sprintf("Known names: %s", strings.Join(candidates, ", "))
}

// SuggestProperty suggests valid property names for a construct.
func SuggestProperty(unknown string, construct string, valid []string) string {
	if s := SuggestName(unknown, valid); s != "" && strings.HasPrefix(s, "Did") {
		return s
	}
	return fmt.Sprintf("Properties understood on %s: %s", construct, strings.Join(valid, ", "))
}

// SuggestJoinStrategy lists the valid parallel join strategies.
func SuggestJoinStrategy() string {
	return `Valid join strategies: "all", "first", "any" (with a count, e.g. parallel ("any", 2):)`
}

// levenshteinDistance computes the edit distance between two strings.
// Used to rank candidates for typo suggestions.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}
	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len1][len2]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
