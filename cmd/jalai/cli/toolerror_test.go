// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("plain"), 1},
		{Internal("broken"), 1},
		{Validation("bad"), 2},
		{Unauthorized("sign in"), 3},
		{Forbidden("no"), 4},
		{NotFound("gone"), 5},
		{Conflict("state"), 6},
		{Transient("later"), 7},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), 5},
		{&ExitError{Code: 9}, 9},
	}
	for _, test := range tests {
		if got := ExitCode(test.err); got != test.want {
			t.Errorf("ExitCode(%v) = %d, want %d", test.err, got, test.want)
		}
	}
}

func TestToolErrorUnwraps(t *testing.T) {
	err := Internal("reading config: %w", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("ToolError hides the wrapped error")
	}
	if Category(fmt.Errorf("outer: %w", err)) != CategoryInternal {
		t.Error("Category did not walk the chain")
	}
	if !Silent(&ExitError{Code: 1}) || Silent(err) {
		t.Error("Silent misclassified")
	}
}
