// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/jalai-group/jalai/lib/codec"
	"github.com/jalai-group/jalai/lib/secret"
)

// Snapshot layout:
//
//	magic "JLC1" | compression (1) | payload size (4, big endian) |
//	nonce (24) | XChaCha20-Poly1305 ciphertext
//
// The first nine bytes and the scope are authenticated as AAD.
const (
	snapshotMagic      = "JLC1"
	snapshotHeaderSize = len(snapshotMagic) + 1 + 4
	masterKeySize      = 32
)

var hkdfInfoSnapshot = []byte("jalai.cache.snapshot.v1:")

// ErrNoSnapshot is returned by Save and Load when the cache was
// created without a SnapshotPath.
var ErrNoSnapshot = errors.New("cache: no snapshot path configured")

type snapshotBody struct {
	Scope   string           `cbor:"scope"`
	Entries map[string]entry `cbor:"entries"`
}

// Save writes live entries to the snapshot file atomically.
func (c *Cache) Save() error {
	if c.options.SnapshotPath == "" {
		return ErrNoSnapshot
	}

	c.mu.Lock()
	c.pruneLocked()
	body := snapshotBody{Scope: c.options.Scope, Entries: make(map[string]entry, len(c.entries))}
	for key, stored := range c.entries {
		body.Entries[key] = stored
	}
	scope := c.options.Scope
	codecChoice := c.options.Compression
	c.mu.Unlock()

	plaintext, err := codec.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	payload, err := compress(plaintext, codecChoice)
	if errors.Is(err, errIncompressible) {
		payload, codecChoice = plaintext, CompressionNone
	} else if err != nil {
		return err
	}

	header := make([]byte, snapshotHeaderSize)
	copy(header, snapshotMagic)
	header[len(snapshotMagic)] = byte(codecChoice)
	binary.BigEndian.PutUint32(header[len(snapshotMagic)+1:], uint32(len(plaintext)))

	aead, err := c.snapshotAEAD(scope)
	if err != nil {
		return err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	output := make([]byte, 0, len(header)+len(nonce)+len(payload)+aead.Overhead())
	output = append(output, header...)
	output = append(output, nonce...)
	output = aead.Seal(output, nonce, payload, snapshotAAD(header, scope))

	return writeAtomic(c.options.SnapshotPath, output)
}

// Load restores entries from the snapshot file, replacing the
// in-memory contents, and returns the number of live entries restored.
// A missing snapshot restores nothing. A snapshot that cannot be
// authenticated (other scope, rotated key, corruption) is discarded
// with a log line rather than failing the caller.
func (c *Cache) Load() (int, error) {
	if c.options.SnapshotPath == "" {
		return 0, ErrNoSnapshot
	}
	data, err := os.ReadFile(c.options.SnapshotPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading snapshot: %w", err)
	}

	c.mu.Lock()
	scope := c.options.Scope
	c.mu.Unlock()

	body, err := c.openSnapshot(data, scope)
	if err != nil {
		c.logger.Info("discarding unreadable cache snapshot",
			"path", c.options.SnapshotPath, "scope", scope, "error", err)
		return 0, nil
	}

	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry, len(body.Entries))
	for key, stored := range body.Entries {
		if now.Before(stored.Expires) {
			c.entries[key] = stored
		}
	}
	return len(c.entries), nil
}

func (c *Cache) openSnapshot(data []byte, scope string) (*snapshotBody, error) {
	nonceSize := chacha20poly1305.NonceSizeX
	if len(data) < snapshotHeaderSize+nonceSize || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return nil, errors.New("not a cache snapshot")
	}
	header := data[:snapshotHeaderSize]
	codecChoice := Compression(header[len(snapshotMagic)])
	size := int(binary.BigEndian.Uint32(header[len(snapshotMagic)+1:]))
	nonce := data[snapshotHeaderSize : snapshotHeaderSize+nonceSize]
	ciphertext := data[snapshotHeaderSize+nonceSize:]

	aead, err := c.snapshotAEAD(scope)
	if err != nil {
		return nil, err
	}
	payload, err := aead.Open(nil, nonce, ciphertext, snapshotAAD(header, scope))
	if err != nil {
		return nil, fmt.Errorf("authenticating snapshot: %w", err)
	}
	plaintext, err := decompress(payload, codecChoice, size)
	if err != nil {
		return nil, err
	}
	var body snapshotBody
	if err := codec.Unmarshal(plaintext, &body); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if body.Scope != scope {
		return nil, fmt.Errorf("snapshot scope %q does not match %q", body.Scope, scope)
	}
	return &body, nil
}

func snapshotAAD(header []byte, scope string) []byte {
	aad := make([]byte, 0, len(header)+len(scope))
	aad = append(aad, header...)
	return append(aad, scope...)
}

func (c *Cache) snapshotAEAD(scope string) (cipher.AEAD, error) {
	if c.options.KeyPath == "" {
		return nil, errors.New("cache: snapshot requires KeyPath")
	}
	master, err := loadOrCreateMasterKey(c.options.KeyPath)
	if err != nil {
		return nil, err
	}
	defer master.Close()

	info := append(append([]byte(nil), hkdfInfoSnapshot...), scope...)
	derived, err := secret.New(chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer derived.Close()
	if _, err := io.ReadFull(hkdf.New(sha256.New, master.Bytes(), nil, info), derived.Bytes()); err != nil {
		return nil, fmt.Errorf("deriving snapshot key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(derived.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return aead, nil
}

func loadOrCreateMasterKey(path string) (*secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != masterKeySize {
			secret.Zero(data)
			return nil, fmt.Errorf("cache key %s: expected %d bytes, got %d", path, masterKeySize, len(data))
		}
		return secret.NewFromBytes(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading cache key: %w", err)
	}

	key := make([]byte, masterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating cache key: %w", err)
	}
	if err := writeAtomic(path, key); err != nil {
		secret.Zero(key)
		return nil, err
	}
	return secret.NewFromBytes(key)
}

// writeAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	temporary, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	temporaryPath := temporary.Name()
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
