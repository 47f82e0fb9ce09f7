// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jalai-group/jalai/lib/sealed"
	"github.com/jalai-group/jalai/lib/secret"
)

// Persisted key names.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserData     = "userData"
	KeyAuthLogs     = "authLogs"
)

// AuthKeys are the keys a logout or corrupt session clears.
var AuthKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUserData}

// ErrCorruptStorage means the storage file exists but could not be
// decoded. Writes replace it.
var ErrCorruptStorage = errors.New("session storage is corrupt")

// Storage is a durable string key/value map.
type Storage interface {
	// Get returns the value and whether the key is present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes keys; absent keys are ignored.
	Remove(keys ...string) error
}

// MemoryStorage is a Storage for tests and --no-persist runs.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// FileStorage keeps the key/value map in one JSON file. Each call
// re-reads the file so changes made by other processes are visible.
type FileStorage struct {
	path    string
	keypair *sealed.Keypair

	mu sync.Mutex
}

// NewFileStorage returns a plaintext FileStorage at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// NewSealedFileStorage returns a FileStorage whose contents are
// encrypted to keypair. A plaintext file left from an unsealed profile
// is still readable and is sealed on the next write.
func NewSealedFileStorage(path string, keypair *sealed.Keypair) *FileStorage {
	return &FileStorage{path: path, keypair: keypair}
}

// Path returns the backing file.
func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if errors.Is(err, ErrCorruptStorage) {
		values = make(map[string]string)
	} else if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStorage) Remove(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if errors.Is(err, ErrCorruptStorage) {
		values = make(map[string]string)
	} else if err != nil {
		return err
	}
	for _, key := range keys {
		delete(values, key)
	}
	return f.write(values)
}

func (f *FileStorage) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	plaintext := data
	if sealed.IsSealed(data) {
		if f.keypair == nil {
			return nil, fmt.Errorf("%w: %s is sealed and no identity is configured", ErrCorruptStorage, f.path)
		}
		opened, err := sealed.Decrypt(data, f.keypair.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptStorage, err)
		}
		defer opened.Close()
		plaintext = opened.Bytes()
	}

	values := make(map[string]string)
	if len(plaintext) == 0 || (len(plaintext) == 1 && plaintext[0] == 0) {
		return values, nil
	}
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStorage, err)
	}
	return values, nil
}

func (f *FileStorage) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session storage: %w", err)
	}
	if f.keypair != nil {
		ciphertext, err := sealed.Encrypt(data, f.keypair.PublicKey)
		secret.Zero(data)
		if err != nil {
			return fmt.Errorf("sealing session storage: %w", err)
		}
		data = ciphertext
	}
	return writeAtomic(f.path, data)
}

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
		return err
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
