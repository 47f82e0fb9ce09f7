// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jalai-group/jalai/lib/secret"
)

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w any) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// TerminalWidth returns the width of stdout, or fallback when stdout
// is not a terminal.
func TerminalWidth(fallback int) int {
	if !IsTerminal(os.Stdout) {
		return fallback
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// CommandHandler returns the stderr log handler: text on a terminal,
// JSON when stderr is piped or redirected.
func CommandHandler(level slog.Level) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if IsTerminal(os.Stderr) {
		return slog.NewTextHandler(os.Stderr, options)
	}
	return slog.NewJSONHandler(os.Stderr, options)
}

// NewCommandLogger returns a logger over CommandHandler. Warnings and
// errors only, unless verbose.
func NewCommandLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(CommandHandler(level))
}

// ReadPassword reads a password from passwordFile, or prompts on the
// terminal with echo disabled when passwordFile is empty or "-".
// Trailing newlines in the file are stripped.
func ReadPassword(passwordFile, prompt string) (*secret.Buffer, error) {
	if passwordFile != "" && passwordFile != "-" {
		buffer, err := secret.ReadFromPath(passwordFile)
		if err != nil {
			return nil, Validation("reading password from %s: %w", passwordFile, err)
		}
		return buffer, nil
	}

	descriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(descriptor) {
		return nil, Validation("no terminal available for interactive password prompt (use --password-file)")
	}
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(descriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, Internal("reading password: %w", err)
	}
	buffer, err := secret.NewFromBytes(password)
	if err != nil {
		secret.Zero(password)
		return nil, Validation("password is empty")
	}
	return buffer, nil
}

// Prompt writes label to out and reads one line from in. The trailing
// newline and surrounding spaces are removed.
func Prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", Validation("reading %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ":")), err)
	}
	return strings.TrimSpace(line), nil
}
