// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts the persisted session (tokens and user data)
// at rest with an age X25519 identity that lives next to it in the
// user's config directory. The identity file is 0600; sealing protects
// against the session file leaking on its own (backups, dotfile repos,
// support bundles).
//
// Private keys and decrypted plaintext are returned in *secret.Buffer
// values and must be closed by the caller.
package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"github.com/jalai-group/jalai/lib/secret"
)

// Keypair is an age X25519 keypair.
type Keypair struct {
	// PrivateKey is the AGE-SECRET-KEY-1... string.
	PrivateKey *secret.Buffer
	// PublicKey is the age1... recipient string.
	PublicKey string
}

// Close releases the private key.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair creates a new X25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}
	privateKey, err := secret.NewFromString(identity.String())
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}
	return &Keypair{PrivateKey: privateKey, PublicKey: identity.Recipient().String()}, nil
}

// LoadOrCreateIdentity reads the identity at path, generating and
// writing a new one (mode 0600, parent 0700) when the file does not
// exist.
func LoadOrCreateIdentity(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		keyText := strings.TrimSpace(string(data))
		secret.Zero(data)
		identity, err := age.ParseX25519Identity(keyText)
		if err != nil {
			return nil, fmt.Errorf("parsing identity %s: %w", path, err)
		}
		privateKey, err := secret.NewFromString(keyText)
		if err != nil {
			return nil, err
		}
		return &Keypair{PrivateKey: privateKey, PublicKey: identity.Recipient().String()}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading identity: %w", err)
	}

	keypair, err := GenerateKeypair()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		keypair.Close()
		return nil, fmt.Errorf("creating identity directory: %w", err)
	}
	contents := make([]byte, 0, keypair.PrivateKey.Len()+1)
	contents = append(contents, keypair.PrivateKey.Bytes()...)
	contents = append(contents, '\n')
	err = os.WriteFile(path, contents, 0600)
	secret.Zero(contents)
	if err != nil {
		keypair.Close()
		return nil, fmt.Errorf("writing identity: %w", err)
	}
	return keypair, nil
}

// Encrypt encrypts plaintext to the given age1... recipients and
// returns the binary age ciphertext.
func Encrypt(plaintext []byte, recipientKeys ...string) ([]byte, error) {
	if len(recipientKeys) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Decrypt opens ciphertext with privateKey. Empty plaintext yields a
// one-byte zero buffer; callers that care compare against Len.
func Decrypt(ciphertext []byte, privateKey *secret.Buffer) (*secret.Buffer, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	if len(plaintext) == 0 {
		return secret.New(1)
	}
	return secret.NewFromBytes(plaintext)
}

// IsSealed reports whether data starts with the age binary header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte("age-encryption.org/v1\n"))
}
