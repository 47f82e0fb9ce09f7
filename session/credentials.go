// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"log/slog"

	"github.com/jalai-group/jalai/api"
)

// Credentials is the api.TokenStore backed by a Storage. Clear removes
// userData as well, so an expired session never leaves a stale
// identity behind.
type Credentials struct {
	storage Storage
	logger  *slog.Logger
}

// NewCredentials wraps storage.
func NewCredentials(storage Storage, logger *slog.Logger) *Credentials {
	if logger == nil {
		logger = slog.Default()
	}
	return &Credentials{storage: storage, logger: logger}
}

func (c *Credentials) AccessToken() string  { return c.get(KeyAccessToken) }
func (c *Credentials) RefreshToken() string { return c.get(KeyRefreshToken) }

func (c *Credentials) get(key string) string {
	value, _, err := c.storage.Get(key)
	if err != nil {
		c.logger.Warn("reading credentials", "key", key, "error", err)
		return ""
	}
	return value
}

func (c *Credentials) SetTokens(credentials api.Credentials) error {
	if credentials.AccessToken == "" {
		return errors.New("session: empty access token")
	}
	if err := c.storage.Set(KeyAccessToken, credentials.AccessToken); err != nil {
		return err
	}
	if credentials.RefreshToken != "" {
		return c.storage.Set(KeyRefreshToken, credentials.RefreshToken)
	}
	return nil
}

func (c *Credentials) Clear() error {
	return c.storage.Remove(AuthKeys...)
}
