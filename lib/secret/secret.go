// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passwords and tokens typed or read by the CLI in
// memory that is kept off the Go heap.
//
// A [Buffer] is backed by an anonymous mmap region. When the kernel
// allows it the region is also mlocked so it never reaches swap; when
// RLIMIT_MEMLOCK is too small (common in containers) the buffer still
// works but reports Locked() == false. Close zeroes and unmaps the
// region.
package secret

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrEmpty is returned when a secret source contains no data.
var ErrEmpty = errors.New("secret: empty")

// Buffer is a fixed-size region of protected memory. It must not be
// copied after creation.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	locked bool
	closed bool
}

// New allocates a zero-filled buffer of size bytes.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}
	buffer := &Buffer{data: data}
	if unix.Mlock(data) == nil {
		buffer.locked = true
	}
	// Best effort: not every kernel supports MADV_DONTDUMP.
	_ = unix.Madvise(data, unix.MADV_DONTDUMP)
	return buffer, nil
}

// NewFromBytes copies source into a new buffer and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, ErrEmpty
	}
	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// NewFromString copies value into a new buffer. The string itself
// stays on the heap; use this only where the value already arrived as
// a string (flags, JSON fields, tests).
func NewFromString(value string) (*Buffer, error) {
	return NewFromBytes([]byte(value))
}

// ReadFromPath reads a secret from path, or the first line of stdin
// when path is "-". Surrounding whitespace is trimmed.
func ReadFromPath(path string) (*Buffer, error) {
	var data []byte
	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return nil, ErrEmpty
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return fromTrimmed(data)
}

// ReadFrom reads all of reader, up to limit bytes, into a new buffer.
func ReadFrom(reader io.Reader, limit int64) (*Buffer, error) {
	data, err := io.ReadAll(io.LimitReader(reader, limit))
	if err != nil {
		Zero(data)
		return nil, err
	}
	return fromTrimmed(data)
}

func fromTrimmed(data []byte) (*Buffer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, ErrEmpty
	}
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	return buffer, err
}

// Bytes returns the buffer contents. The slice aliases the protected
// region and is invalid after Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data
}

// String returns a heap copy of the contents for APIs that need a
// string (JSON request bodies, headers).
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.data)
}

// Len returns the size of the secret.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Locked reports whether the region is pinned in RAM.
func (b *Buffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// Close zeroes and releases the buffer. Idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	Zero(b.data)
	if b.locked {
		_ = unix.Munlock(b.data)
	}
	err := unix.Munmap(b.data)
	b.data = nil
	if err != nil {
		return fmt.Errorf("secret: munmap: %w", err)
	}
	return nil
}

// Zero overwrites data with zeros.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
