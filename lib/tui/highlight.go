// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

// Highlight colors source for a 256-color terminal. Unknown languages
// and highlighter failures return source unchanged.
func Highlight(source, language string) string {
	if language == "" {
		return source
	}
	var buffer bytes.Buffer
	if err := quick.Highlight(&buffer, source, language, "terminal256", "monokai"); err != nil {
		return source
	}
	return buffer.String()
}

// WriteJSON writes value as indented JSON, highlighted when color is
// true.
func WriteJSON(w io.Writer, value any, color bool) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	out := string(data)
	if color {
		out = Highlight(out, "json")
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}
