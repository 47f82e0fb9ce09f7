// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jalai-group/jalai/lib/cache"
	"github.com/jalai-group/jalai/lib/netutil"
)

// Records about authentication carry LogScopeKey=LogScopeAuth so a
// handler can route them to the auth debug log.
const (
	LogScopeKey  = "scope"
	LogScopeAuth = "auth"
)

// TokenStore holds the credential pair. Implementations persist it;
// the client only reads and rotates it.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(Credentials) error
	// Clear removes the tokens and any persisted session data.
	Clear() error
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "http://localhost:8080/api".
	BaseURL string

	// HTTPClient defaults to a client with a 30 second timeout.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Tokens defaults to an in-memory store.
	Tokens TokenStore

	// Cache, when set, serves PublicGet responses for CacheTTL.
	Cache    *cache.Cache
	CacheTTL time.Duration

	// OnSessionExpired runs after the interceptor gives up and the
	// token store has been cleared. It must not call back into the
	// Client synchronously.
	OnSessionExpired func()

	// UserAgent is sent with every request when set.
	UserAgent string
}

// Client talks to the JALAI backend. Safe for concurrent use.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	logger           *slog.Logger
	tokens           TokenStore
	cache            *cache.Cache
	cacheTTL         time.Duration
	onSessionExpired func()
	userAgent        string

	// refreshMu serializes refresh exchanges and guards state.
	refreshMu sync.Mutex
	state     SessionState
}

// NewClient validates config and returns a Client.
func NewClient(config ClientConfig) (*Client, error) {
	parsed, err := url.Parse(config.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api: base URL must be absolute, got %q", config.BaseURL)
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tokens := config.Tokens
	if tokens == nil {
		tokens = &MemoryTokens{}
	}
	return &Client{
		baseURL:          strings.TrimRight(config.BaseURL, "/"),
		httpClient:       httpClient,
		logger:           logger,
		tokens:           tokens,
		cache:            config.Cache,
		cacheTTL:         config.CacheTTL,
		onSessionExpired: config.OnSessionExpired,
		userAgent:        config.UserAgent,
		state:            StateAuthorized,
	}, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Tokens returns the configured token store.
func (c *Client) Tokens() TokenStore { return c.tokens }

// request is one logical call. body is kept as bytes so the retry after
// a refresh can resend it.
type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	header      http.Header

	// authenticated requests carry the bearer token and go through the
	// refresh interceptor.
	authenticated bool
}

type response struct {
	statusCode int
	header     http.Header
	body       []byte
}

func newJSONRequest(method, path string, body any, authenticated bool) (*request, error) {
	req := &request{method: method, path: path, authenticated: authenticated}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encoding %s %s body: %w", method, path, err)
		}
		req.body = encoded
		req.contentType = "application/json"
	}
	return req, nil
}

// Do sends an authenticated JSON request and decodes a successful
// response into out. out may be nil, a pointer to a JSON-decodable
// value, or a **RawResponse.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := newJSONRequest(method, path, body, true)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	return decodeInto(req, resp, out)
}

// PublicGet performs an unauthenticated GET. JSON responses are cached
// when the client has a cache.
func (c *Client) PublicGet(ctx context.Context, path string, out any) error {
	_, wantsRaw := out.(**RawResponse)
	cacheKey := cache.Key(http.MethodGet, c.baseURL, path)
	if c.cache != nil && !wantsRaw {
		if cached, ok := c.cache.Get(cacheKey); ok {
			c.logger.Debug("api cache hit", "path", path)
			return decodeInto(&request{method: http.MethodGet, path: path},
				&response{statusCode: http.StatusOK, body: cached, header: http.Header{"Content-Type": {"application/json"}}}, out)
		}
	}

	req := &request{method: http.MethodGet, path: path}
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if err := decodeInto(req, resp, out); err != nil {
		return err
	}
	if c.cache != nil && !wantsRaw && isJSONBody(resp) {
		c.cache.Set(cacheKey, resp.body, c.cacheTTL)
	}
	return nil
}

// InvalidateCache drops every cached public response.
func (c *Client) InvalidateCache() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// send runs req through the refresh interceptor and returns a 2xx
// response or an error.
func (c *Client) send(ctx context.Context, req *request) (*response, error) {
	var token string
	if req.authenticated {
		token = c.tokens.AccessToken()
	}
	resp, err := c.roundTrip(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if !req.authenticated || resp.statusCode != http.StatusUnauthorized {
		return c.check(req, resp)
	}

	renewed, err := c.renew(ctx, token)
	if err != nil {
		return nil, err
	}
	resp, err = c.roundTrip(ctx, req, renewed)
	if err != nil {
		return nil, err
	}
	if resp.statusCode == http.StatusUnauthorized {
		c.expire(ctx, "retry rejected after refresh", nil)
		return nil, ErrSessionExpired
	}
	return c.check(req, resp)
}

// roundTrip performs exactly one HTTP exchange.
func (c *Client) roundTrip(ctx context.Context, req *request, token string) (*response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("api: building %s %s: %w", req.method, req.path, err)
	}

	for name, values := range req.header {
		httpRequest.Header[name] = values
	}
	httpRequest.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpRequest.Header.Set("Content-Type", req.contentType)
	}
	if token != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		httpRequest.Header.Set("User-Agent", c.userAgent)
	}
	requestID := uuid.NewString()
	httpRequest.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("api: %s %s: %w", req.method, req.path, ctxErr)
		}
		c.logger.Warn("api request failed", "method", req.method, "path", req.path,
			"request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.method, req.path, err)
	}
	defer httpResponse.Body.Close()

	responseBody, err := netutil.ReadResponse(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s response: %w", ErrNetwork, req.method, req.path, err)
	}
	c.logger.Debug("api request",
		"method", req.method,
		"path", req.path,
		"status", httpResponse.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)
	return &response{statusCode: httpResponse.StatusCode, header: httpResponse.Header, body: responseBody}, nil
}

// check converts a non-2xx response into *Error.
func (c *Client) check(req *request, resp *response) (*response, error) {
	if resp.statusCode >= 200 && resp.statusCode < 300 {
		return resp, nil
	}
	apiError := &Error{StatusCode: resp.statusCode, Method: req.method, Path: req.path}
	if len(resp.body) > 0 {
		if json.Unmarshal(resp.body, apiError) != nil {
			apiError.Message = ""
			apiError.Body = string(resp.body)
		}
	}
	if resp.statusCode == http.StatusForbidden && apiError.Message == "" {
		apiError.Message = "Access denied: you do not have permission to access this resource"
	}
	return nil, apiError
}

func isJSONBody(resp *response) bool {
	return netutil.IsJSONContentType(resp.header.Get("Content-Type")) || json.Valid(resp.body)
}

func decodeInto(req *request, resp *response, out any) error {
	if out == nil {
		return nil
	}
	contentType := resp.header.Get("Content-Type")
	if raw, ok := out.(**RawResponse); ok {
		*raw = &RawResponse{StatusCode: resp.statusCode, ContentType: contentType, Body: resp.body}
		return nil
	}
	if len(resp.body) == 0 {
		return &DecodeError{Method: req.method, Path: req.path, ContentType: contentType, Reason: "empty response body"}
	}
	if !isJSONBody(resp) {
		return &DecodeError{Method: req.method, Path: req.path, ContentType: contentType, Reason: "response is not JSON"}
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &DecodeError{Method: req.method, Path: req.path, ContentType: contentType, Reason: "unexpected shape", Err: err}
	}
	return nil
}

// withQuery appends encoded query values to path.
func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

// MemoryTokens is a TokenStore that keeps the pair in memory only.
type MemoryTokens struct {
	mu          sync.Mutex
	credentials Credentials
}

func (m *MemoryTokens) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credentials.AccessToken
}

func (m *MemoryTokens) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credentials.RefreshToken
}

func (m *MemoryTokens) SetTokens(credentials Credentials) error {
	if credentials.AccessToken == "" {
		return errors.New("api: empty access token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials = credentials
	return nil
}

func (m *MemoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials = Credentials{}
	return nil
}
