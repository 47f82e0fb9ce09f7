// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/jsonc"
)

// ParseDraft decodes a JSONC object of field values. Strings are kept
// as-is, numbers keep their literal text, booleans become "true" or
// "false" and null becomes "". Nested values are rejected.
func ParseDraft(data []byte) (Values, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing draft: %w", err)
	}
	values := make(Values, len(raw))
	for field, value := range raw {
		switch typed := value.(type) {
		case nil:
			values[field] = ""
		case string:
			values[field] = typed
		case bool:
			values[field] = strconv.FormatBool(typed)
		case json.Number:
			values[field] = typed.String()
		default:
			return nil, fmt.Errorf("parsing draft: field %q must be a string, number or boolean", field)
		}
	}
	return values, nil
}

// LoadDraft reads a JSONC draft file.
func LoadDraft(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	values, err := ParseDraft(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}
