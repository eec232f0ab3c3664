// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"
	"unicode"
)

// =============================================================================
// FUZZY MATCHING
// =============================================================================

// FuzzyMatch reports whether every rune of query appears in target in
// order, ignoring case, and scores the match. Consecutive runes, the start
// of the target and word boundaries score higher; longer targets score
// lower.
//
//	"gpt4"   matches "openai/gpt-4"
//	"son"    matches "Claude 3.5 Sonnet"
//	"xyz"    does not match "gpt-4"
func FuzzyMatch(query, target string) (score int, matched bool) {
	if query == "" {
		return 0, true
	}

	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(target))
	if len(q) > len(t) {
		return 0, false
	}

	qi := 0
	last := -1
	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			continue
		}
		s := 1
		if last == ti-1 {
			s += 5
		}
		if ti == 0 {
			s += 10
		}
		if isWordBoundary(t, ti) {
			s += 7
		}
		score += s
		last = ti
		qi++
	}

	if qi != len(q) {
		return 0, false
	}
	return score - len(t)/4, true
}

// isWordBoundary is true after a separator or at the start.
func isWordBoundary(runes []rune, pos int) bool {
	if pos == 0 {
		return true
	}
	if pos >= len(runes) {
		return false
	}
	prev := runes[pos-1]
	return prev == ' ' || prev == '/' || prev == '-' || prev == '_' || prev == '.' ||
		(unicode.IsDigit(runes[pos]) && !unicode.IsDigit(prev))
}

// ScoredMatch is one FuzzyFilter hit. Index points into the input slice.
type ScoredMatch struct {
	Index int
	Score int
}

// FuzzyFilter returns the indexes of targets matching query, best first.
// Ties keep input order. An empty query keeps every target in order.
func FuzzyFilter(query string, targets []string) []ScoredMatch {
	matches := make([]ScoredMatch, 0, len(targets))
	for i, target := range targets {
		if score, ok := FuzzyMatch(query, target); ok {
			matches = append(matches, ScoredMatch{Index: i, Score: score})
		}
	}
	if query != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Score > matches[j].Score
		})
	}
	return matches
}
