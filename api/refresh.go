// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// SessionState is the refresh interceptor's state.
type SessionState int

const (
	// StateAuthorized: requests go out with the stored access token.
	StateAuthorized SessionState = iota
	// StateRefreshing: a refresh exchange is in flight.
	StateRefreshing
	// StateExpired: the last exchange failed and credentials were
	// cleared. A successful Login returns to StateAuthorized.
	StateExpired
)

func (s SessionState) String() string {
	switch s {
	case StateAuthorized:
		return "authorized"
	case StateRefreshing:
		return "refreshing"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// SessionState reports the interceptor state.
func (c *Client) SessionState() SessionState {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.state
}

func (c *Client) setState(state SessionState) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	c.state = state
}

// renew returns an access token to retry with. stale is the token the
// rejected request carried. When another goroutine already rotated the
// token, the rotated token is returned without a second exchange.
func (c *Client) renew(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	if current := c.tokens.AccessToken(); current != "" && current != stale {
		c.refreshMu.Unlock()
		return current, nil
	}

	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		c.refreshMu.Unlock()
		c.expire(ctx, "no refresh token stored", nil)
		return "", ErrSessionExpired
	}

	c.state = StateRefreshing
	c.logger.InfoContext(ctx, "refreshing access token", slog.String(LogScopeKey, LogScopeAuth))
	credentials, err := c.exchange(ctx, refreshToken)
	if err == nil {
		err = c.tokens.SetTokens(credentials)
	}
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; the session itself may still be valid.
			c.state = StateAuthorized
			c.refreshMu.Unlock()
			return "", err
		}
		c.refreshMu.Unlock()
		c.expire(ctx, "refresh exchange failed", err)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	c.state = StateAuthorized
	c.refreshMu.Unlock()
	c.logger.InfoContext(ctx, "access token refreshed", slog.String(LogScopeKey, LogScopeAuth))
	return credentials.AccessToken, nil
}

// exchange performs POST /auth/refresh outside the interceptor.
func (c *Client) exchange(ctx context.Context, refreshToken string) (Credentials, error) {
	req, err := newJSONRequest(http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": refreshToken}, false)
	if err != nil {
		return Credentials{}, err
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return Credentials{}, err
	}
	var credentials Credentials
	if err := decodeInto(req, resp, &credentials); err != nil {
		return Credentials{}, err
	}
	if credentials.AccessToken == "" {
		return Credentials{}, &DecodeError{Method: req.method, Path: req.path, Reason: "refresh response has no accessToken"}
	}
	if credentials.RefreshToken == "" {
		credentials.RefreshToken = refreshToken
	}
	return credentials, nil
}

// expire clears credentials, enters StateExpired, and runs the
// OnSessionExpired hook.
func (c *Client) expire(ctx context.Context, reason string, cause error) {
	c.refreshMu.Lock()
	c.state = StateExpired
	clearErr := c.tokens.Clear()
	c.refreshMu.Unlock()

	attributes := []any{slog.String(LogScopeKey, LogScopeAuth), "reason", reason}
	if cause != nil {
		attributes = append(attributes, "error", cause)
	}
	c.logger.WarnContext(ctx, "session expired", attributes...)
	if clearErr != nil {
		c.logger.ErrorContext(ctx, "clearing credentials failed", slog.String(LogScopeKey, LogScopeAuth), "error", clearErr)
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// Refresh forces a refresh exchange with the stored refresh token.
// Unlike the interceptor it does not clear credentials on failure.
func (c *Client) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		return errors.New("api: no refresh token stored")
	}
	credentials, err := c.exchange(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := c.tokens.SetTokens(credentials); err != nil {
		return err
	}
	c.state = StateAuthorized
	return nil
}
