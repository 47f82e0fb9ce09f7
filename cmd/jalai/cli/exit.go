// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/jalai-group/jalai/lib/process"
)

// ExitError signals a non-zero exit code without printing an extra
// error message; the command has already written its own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCode returns the process exit status for err: 0 for nil, the
// code of the first ExitCode() in the chain, or 1.
func ExitCode(err error) int {
	return process.ExitCode(err)
}

// Silent reports whether err should exit without an error line.
func Silent(err error) bool {
	var exitError *ExitError
	return errors.As(err, &exitError)
}
