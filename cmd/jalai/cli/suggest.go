// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestDistance is the largest edit distance still suggested.
const maxSuggestDistance = 3

// suggestCommand returns the closest subcommand name, or "".
func suggestCommand(unknown string, commands []*Command) string {
	names := make([]string, len(commands))
	for i, command := range commands {
		names[i] = command.Name
	}
	return closest(unknown, names)
}

// suggestFlag finds the first undefined flag in args and returns the
// closest defined flag with its dash prefix, or "".
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	var defined []string
	flagSet.VisitAll(func(f *pflag.Flag) { defined = append(defined, f.Name) })

	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if flagSet.Lookup(name) != nil {
			continue
		}
		if best := closest(name, defined); best != "" {
			return "--" + best
		}
		break
	}
	return ""
}

func closest(unknown string, candidates []string) string {
	best, bestDistance := "", maxSuggestDistance+1
	for _, candidate := range candidates {
		if distance := levenshtein(unknown, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

// levenshtein is the single-row edit distance.
func levenshtein(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}
	for j := 1; j <= len(b); j++ {
		diagonal := row[0]
		row[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := min(row[i]+1, row[i-1]+1, diagonal+cost)
			diagonal, row[i] = row[i], next
		}
	}
	return row[len(a)]
}
