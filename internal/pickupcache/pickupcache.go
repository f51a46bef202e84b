// Package pickupcache keeps the last good pickup result per profile so a failed
// refresh can fall back to it.
package pickupcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nicolasacchi/abfallcli/internal/api"
)

const (
	CacheFileName   = "pickups.json"
	FilePermissions = os.FileMode(0600)

	// maxAge is how long an entry survives without a successful refresh.
	maxAge = 30 * 24 * time.Hour
)

// Entry is the cached state of one profile.
type Entry struct {
	Profile     string           `json:"profile"`
	Pickups     api.PickupResult `json:"pickups,omitempty"`
	FetchedAt   time.Time        `json:"fetched_at,omitempty"`
	LastAttempt time.Time        `json:"last_attempt"`
	Failures    int              `json:"failures"` // consecutive failed refreshes
}

// Stale reports whether the last refresh attempt failed.
func (e Entry) Stale() bool {
	return e.Failures > 0
}

// cacheFile is the on-disk format of the cache.
type cacheFile struct {
	Entries map[string]*Entry `json:"entries"`
}

// Cache manages pickup results per profile.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*Entry // keyed by lower-cased profile name
	cachePath string
	now       func() time.Time
}

// New creates a cache stored in configDir. Loads existing entries from disk; an
// unreadable cache file is ignored.
func New(configDir string) *Cache {
	c := &Cache{
		entries:   make(map[string]*Entry),
		cachePath: filepath.Join(configDir, CacheFileName),
		now:       time.Now,
	}
	c.load()
	return c
}

// Store records a successful refresh and resets the failure counter.
func (c *Cache) Store(profile string, result api.PickupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e := c.entry(profile)
	e.Pickups = result
	e.FetchedAt = now
	e.LastAttempt = now
	e.Failures = 0
}

// RecordFailure notes a failed refresh. Previously stored pickups are kept.
func (c *Cache) RecordFailure(profile string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(profile)
	e.LastAttempt = c.now()
	e.Failures++
}

// Get returns a copy of the entry for profile.
func (c *Cache) Get(profile string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key(profile)]
	if !ok {
		return Entry{}, false
	}
	out := *e
	if e.Pickups != nil {
		out.Pickups = make(api.PickupResult, len(e.Pickups))
		for k, v := range e.Pickups {
			out.Pickups[k] = append(v[:0:0], v...)
		}
	}
	return out, true
}

// Forget drops the entry for profile.
func (c *Cache) Forget(profile string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key(profile))
}

// Persist writes the current cache to disk.
func (c *Cache) Persist() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Prune entries that have not been refreshed successfully for a long time
	cutoff := c.now().Add(-maxAge)
	for k, e := range c.entries {
		if e.LastAttempt.Before(cutoff) {
			delete(c.entries, k)
		}
	}

	if len(c.entries) == 0 {
		os.Remove(c.cachePath)
		return nil
	}

	data, err := json.MarshalIndent(cacheFile{Entries: c.entries}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.cachePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp := c.cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, FilePermissions); err != nil {
		return fmt.Errorf("writing pickup cache: %w", err)
	}
	return os.Rename(tmp, c.cachePath)
}

func (c *Cache) entry(profile string) *Entry {
	k := key(profile)
	e, ok := c.entries[k]
	if !ok {
		e = &Entry{Profile: profile}
		c.entries[k] = e
	}
	return e
}

func (c *Cache) load() {
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err == nil && cf.Entries != nil {
		c.entries = cf.Entries
	}
}

func key(profile string) string {
	return strings.ToLower(profile)
}
