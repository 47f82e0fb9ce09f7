// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Fatal writes "error: err" to stderr and exits with ExitCode(err).
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(ExitCode(err))
}

// Report writes "error: err" to w. Multi-line errors keep their line
// breaks.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

// ExitCode returns the status carried by the first error in err's
// chain with an ExitCode() int method, 0 for nil, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
