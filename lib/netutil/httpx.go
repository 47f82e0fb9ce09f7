// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds reads of HTTP response bodies returned by the
// JALAI backend and classifies transport errors.
package netutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/url"
)

// MaxResponseSize bounds JSON API response reads: 32 MB. Catalog pages
// are a few hundred kilobytes at most.
const MaxResponseSize int64 = 32 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a bounded body and JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody reads an error response body for diagnostics. Read errors
// are ignored; a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := ReadResponse(body)
	return string(data)
}

// IsJSONContentType reports whether a Content-Type header names JSON
// (application/json or any +json suffix).
func IsJSONContentType(header string) bool {
	if header == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return len(mediaType) > 5 && mediaType[len(mediaType)-5:] == "+json"
}

// IsTransportError reports whether err came from the network layer
// (dial failure, reset, DNS) rather than from the server's response.
// Context cancellation is not a transport error.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlError *url.Error
	if errors.As(err, &urlError) {
		return true
	}
	var netError net.Error
	return errors.As(err, &netError)
}
