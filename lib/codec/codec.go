// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR configuration used for JALAI's on-disk
// binary formats (the response cache snapshot). Encoding is Core
// Deterministic (RFC 8949 §4.2) so identical cache contents produce
// identical snapshot bytes.
package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	options := cbor.CoreDetEncOptions()
	options.Time = cbor.TimeRFC3339Nano
	encMode, err = options.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	// Cached API payloads are decoded into any-typed targets; the
	// default map[any]any is unusable with encoding/json.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v. Unknown fields are ignored.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// RawMessage is a raw encoded CBOR value.
type RawMessage = cbor.RawMessage

// NewEncoder returns a stream encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a stream decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
