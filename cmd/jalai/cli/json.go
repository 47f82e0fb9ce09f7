// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"os"
	"reflect"

	"github.com/jalai-group/jalai/lib/tui"
)

// JSONOutput is an embeddable params struct that adds --json.
//
//	type listParams struct {
//	    cli.JSONOutput
//	    Page int `flag:"page" desc:"zero-based page"`
//	}
//
//	if done, err := params.EmitJSON(donations); done {
//	    return err
//	}
//	// ... text formatting ...
type JSONOutput struct {
	OutputJSON bool `flag:"json" desc:"output as JSON"`

	// Output defaults to os.Stdout.
	Output io.Writer
}

// EmitJSON writes result as indented JSON if --json is set, syntax
// highlighted when writing to a terminal. It returns (false, nil) when
// the caller should fall through to text output. Nil slices are
// written as [].
func (j *JSONOutput) EmitJSON(result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(j.writer(), result)
}

func (j *JSONOutput) writer() io.Writer {
	if j.Output != nil {
		return j.Output
	}
	return os.Stdout
}

// WriteJSON writes value to w, highlighted when w is a terminal.
func WriteJSON(w io.Writer, value any) error {
	return tui.WriteJSON(w, normalizeNilSlice(value), IsTerminal(w))
}

func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
