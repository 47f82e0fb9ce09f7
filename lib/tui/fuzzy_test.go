// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "testing"

func TestFuzzyMatchSubstring(t *testing.T) {
	result := FuzzyMatch("Hope House Orphanage", []rune("hope"), nil)
	if result.Score <= 0 || len(result.Positions) != 4 {
		t.Fatalf("result = %+v", result)
	}
}

func TestFuzzyMatchNonContiguous(t *testing.T) {
	if result := FuzzyMatch("Bethany Children's Home", []rune("bch"), nil); result.Score <= 0 {
		t.Fatalf("expected match, got %+v", result)
	}
}

func TestFuzzyMatchNoMatch(t *testing.T) {
	result := FuzzyMatch("Douala", []rune("xyz"), nil)
	if result.Score != 0 || len(result.Positions) != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestFuzzyMatchEmptyPattern(t *testing.T) {
	if result := FuzzyMatch("anything", nil, nil); result.Score != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestRankOrdersBestFirst(t *testing.T) {
	candidates := []string{"Yaoundé Kids Shelter", "Sunrise Home", "Sunshine Orphanage"}
	ranked := Rank(candidates, "sunsh")
	if len(ranked) == 0 || ranked[0].Index != 2 {
		t.Fatalf("ranked = %+v", ranked)
	}
	for _, entry := range ranked {
		if entry.Index == 0 {
			t.Errorf("unrelated candidate matched: %+v", entry)
		}
	}
}
