// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"slices"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var fuzzyInit sync.Once

// FuzzyResult is the outcome of matching one candidate. Score is zero
// when the pattern does not match. Positions are rune indices of the
// matched characters.
type FuzzyResult struct {
	Score     int
	Positions []int
}

// NewSlab returns scratch space for repeated FuzzyMatch calls from one
// goroutine.
func NewSlab() *util.Slab { return util.MakeSlab(100*1024, 2048) }

// FuzzyMatch matches pattern against text case-insensitively with
// fzf's V2 algorithm. An empty pattern matches everything with score 1.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Score: 1}
	}
	fuzzyInit.Do(func() { algo.Init("default") })

	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}
	match := FuzzyResult{Score: result.Score}
	if positions != nil {
		match.Positions = slices.Clone(*positions)
		slices.Sort(match.Positions)
	}
	return match
}

// Ranked is a candidate index with its match.
type Ranked struct {
	Index int
	FuzzyResult
}

// Rank matches pattern against every candidate and returns the matches
// best first. Ties keep candidate order.
func Rank(candidates []string, pattern string) []Ranked {
	slab := NewSlab()
	runes := []rune(pattern)
	var ranked []Ranked
	for index, candidate := range candidates {
		match := FuzzyMatch(candidate, runes, slab)
		if match.Score > 0 {
			ranked = append(ranked, Ranked{Index: index, FuzzyResult: match})
		}
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int { return b.Score - a.Score })
	return ranked
}
