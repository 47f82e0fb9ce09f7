// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache is the response cache for public catalog reads
// (products, categories, orphanages). Entries live in memory with a
// per-entry TTL and can be snapshotted to disk so the next CLI
// invocation starts warm.
//
// Snapshots are CBOR, compressed with zstd or lz4, and sealed with
// XChaCha20-Poly1305 under a key derived from a random 32-byte master
// key file and the cache scope (the signed-in user's ID, or "public").
// A snapshot written under one scope is unreadable under another, so
// switching users never serves the previous user's cached pages.
package cache

import (
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/jalai-group/jalai/lib/clock"
)

// DefaultTTL is used when Options.DefaultTTL is zero.
const DefaultTTL = 5 * time.Minute

// Options configures a Cache.
type Options struct {
	// DefaultTTL applies to Set calls with ttl <= 0.
	DefaultTTL time.Duration

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// SnapshotPath enables Save and Load. Empty means memory only.
	SnapshotPath string

	// KeyPath is the master key file for snapshot encryption. Created
	// with mode 0600 on first use. Required when SnapshotPath is set.
	KeyPath string

	// Compression selects the snapshot codec. Defaults to zstd.
	Compression Compression

	// Scope partitions snapshots by identity. Defaults to "public".
	Scope string
}

type entry struct {
	Value   []byte    `cbor:"v"`
	Expires time.Time `cbor:"e"`
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	options Options
	clock   clock.Clock
	logger  *slog.Logger
	hits    uint64
	misses  uint64
}

// New creates an empty cache. Call Load to restore a snapshot.
func New(options Options) *Cache {
	if options.DefaultTTL <= 0 {
		options.DefaultTTL = DefaultTTL
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Compression == 0 {
		options.Compression = CompressionZstd
	}
	if options.Scope == "" {
		options.Scope = "public"
	}
	return &Cache{
		entries: make(map[string]entry),
		options: options,
		clock:   options.Clock,
		logger:  options.Logger,
	}
}

// Key derives a fixed-length cache key from request components.
func Key(parts ...string) string {
	sum := blake3.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:16])
}

// Get returns a live entry. Expired entries are evicted on access.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if !c.clock.Now().Before(stored.Expires) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.hits++
	return stored.Value, true
}

// Set stores value for ttl (DefaultTTL when ttl <= 0). The cache keeps
// its own copy.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.options.DefaultTTL
	}
	copied := append([]byte(nil), value...)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{Value: copied, Expires: c.clock.Now().Add(ttl)}
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Prune drops expired entries and returns how many were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked()
}

func (c *Cache) pruneLocked() int {
	now := c.clock.Now()
	removed := 0
	for key, stored := range c.entries {
		if !now.Before(stored.Expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats reports entry count and hit/miss counters.
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// Stats returns a point-in-time view of the cache.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// SetScope switches the snapshot scope. Entries in memory are dropped
// because they belong to the previous scope.
func (c *Cache) SetScope(scope string) {
	if scope == "" {
		scope = "public"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.options.Scope == scope {
		return
	}
	c.options.Scope = scope
	c.entries = make(map[string]entry)
}
