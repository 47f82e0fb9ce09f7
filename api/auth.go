// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// AuthPayloadKind tags the shape of an auth response.
type AuthPayloadKind int

const (
	// AuthEnvelope: {accessToken, refreshToken, tokenType, expiresIn, user}.
	AuthEnvelope AuthPayloadKind = iota + 1
	// AuthBareUser: the body is the user object itself, without tokens.
	AuthBareUser
)

func (k AuthPayloadKind) String() string {
	switch k {
	case AuthEnvelope:
		return "envelope"
	case AuthBareUser:
		return "bare-user"
	default:
		return fmt.Sprintf("AuthPayloadKind(%d)", int(k))
	}
}

// AuthPayload is a decoded login or registration response.
type AuthPayload struct {
	Kind AuthPayloadKind

	// User is always set.
	User User

	// Credentials and token metadata are set only for AuthEnvelope.
	Credentials Credentials
	TokenType   string
	ExpiresIn   int64
}

type authEnvelope struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	TokenType    string          `json:"tokenType"`
	ExpiresIn    int64           `json:"expiresIn"`
	User         json.RawMessage `json:"user"`
}

// DecodeAuthPayload classifies and decodes an auth response body. A
// body with accessToken or user keys is an envelope and must carry
// both a non-empty accessToken and a user with id and email. Otherwise
// a body with id and email is a bare user. Anything else fails with
// *DecodeError.
func DecodeAuthPayload(body []byte) (AuthPayload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return AuthPayload{}, &DecodeError{Reason: "auth response is not a JSON object", Err: err}
	}

	_, hasToken := fields["accessToken"]
	_, hasUser := fields["user"]
	if hasToken || hasUser {
		var envelope authEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return AuthPayload{}, &DecodeError{Reason: "malformed auth envelope", Err: err}
		}
		if envelope.AccessToken == "" {
			return AuthPayload{}, &DecodeError{Reason: "auth envelope has no accessToken"}
		}
		user, err := decodeUser(envelope.User)
		if err != nil {
			return AuthPayload{}, err
		}
		return AuthPayload{
			Kind: AuthEnvelope,
			User: user,
			Credentials: Credentials{
				AccessToken:  envelope.AccessToken,
				RefreshToken: envelope.RefreshToken,
			},
			TokenType: envelope.TokenType,
			ExpiresIn: envelope.ExpiresIn,
		}, nil
	}

	user, err := decodeUser(body)
	if err != nil {
		return AuthPayload{}, err
	}
	return AuthPayload{Kind: AuthBareUser, User: user}, nil
}

func decodeUser(data json.RawMessage) (User, error) {
	if len(data) == 0 || string(data) == "null" {
		return User{}, &DecodeError{Reason: "auth response has no user"}
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return User{}, &DecodeError{Reason: "malformed user object", Err: err}
	}
	if user.ID == "" || user.Email == "" {
		return User{}, &DecodeError{Reason: "user object lacks id or email"}
	}
	return user, nil
}

// ErrNoAccessToken is returned by Login when the server answered with a
// user but no tokens.
var ErrNoAccessToken = errors.New("login failed: no access token received")

// Login exchanges credentials for a session and stores the tokens.
// Auth endpoints bypass the refresh interceptor, so bad credentials
// surface as *Error with status 401.
func (c *Client) Login(ctx context.Context, email, password string) (AuthPayload, error) {
	c.logger.InfoContext(ctx, "login attempt", slog.String(LogScopeKey, LogScopeAuth), "email", email)
	payload, err := c.authenticate(ctx, "/auth/login", map[string]string{"email": email, "password": password})
	if err != nil {
		c.logger.WarnContext(ctx, "login failed", slog.String(LogScopeKey, LogScopeAuth), "email", email, "error", err)
		return AuthPayload{}, err
	}
	if payload.Kind != AuthEnvelope {
		c.logger.WarnContext(ctx, "login response without tokens", slog.String(LogScopeKey, LogScopeAuth), "email", email)
		return AuthPayload{}, ErrNoAccessToken
	}
	c.logger.InfoContext(ctx, "login succeeded", slog.String(LogScopeKey, LogScopeAuth),
		"user_id", payload.User.ID, "user_type", payload.User.UserType)
	return payload, nil
}

// Register creates an account for role. fields is the role-specific
// registration body. Tokens are stored when the server returns them.
func (c *Client) Register(ctx context.Context, role Role, fields map[string]any) (AuthPayload, error) {
	segment := role.PathSegment()
	if role != RoleClient && role != RoleOrphanage {
		return AuthPayload{}, fmt.Errorf("api: cannot self-register role %q", role)
	}
	c.logger.InfoContext(ctx, "registration attempt", slog.String(LogScopeKey, LogScopeAuth), "role", role)
	payload, err := c.authenticate(ctx, "/auth/register/"+segment, fields)
	if err != nil {
		c.logger.WarnContext(ctx, "registration failed", slog.String(LogScopeKey, LogScopeAuth), "role", role, "error", err)
		return AuthPayload{}, err
	}
	c.logger.InfoContext(ctx, "registration succeeded", slog.String(LogScopeKey, LogScopeAuth),
		"user_id", payload.User.ID, "kind", payload.Kind)
	return payload, nil
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (AuthPayload, error) {
	req, err := newJSONRequest(http.MethodPost, path, body, false)
	if err != nil {
		return AuthPayload{}, err
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return AuthPayload{}, err
	}
	payload, err := DecodeAuthPayload(resp.body)
	if err != nil {
		var decodeError *DecodeError
		if errors.As(err, &decodeError) {
			decodeError.Method, decodeError.Path = req.method, req.path
			decodeError.ContentType = resp.header.Get("Content-Type")
		}
		return AuthPayload{}, err
	}
	if payload.Kind == AuthEnvelope {
		if err := c.tokens.SetTokens(payload.Credentials); err != nil {
			return AuthPayload{}, fmt.Errorf("storing credentials: %w", err)
		}
		c.setState(StateAuthorized)
	}
	return payload, nil
}

// Logout invalidates the session on the server when possible and
// always clears local credentials. The server error, if any, is
// returned for logging; local state is cleared regardless.
func (c *Client) Logout(ctx context.Context) error {
	var serverErr error
	if c.tokens.AccessToken() != "" {
		req, err := newJSONRequest(http.MethodPost, "/auth/logout", nil, false)
		if err == nil {
			req.header = http.Header{"Authorization": {"Bearer " + c.tokens.AccessToken()}}
			_, serverErr = c.send(ctx, req)
		}
		if serverErr != nil {
			c.logger.WarnContext(ctx, "server logout failed", slog.String(LogScopeKey, LogScopeAuth), "error", serverErr)
		}
	}
	if err := c.tokens.Clear(); err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	c.logger.InfoContext(ctx, "logged out", slog.String(LogScopeKey, LogScopeAuth))
	return serverErr
}
