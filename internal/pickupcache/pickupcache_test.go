package pickupcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasacchi/abfallcli/internal/api"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStoreAndGet(t *testing.T) {
	c := New(t.TempDir())
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	c.now = fixedClock(now)

	c.Store("Home", api.PickupResult{"Restmüll": {day(10, 21), day(11, 4)}})

	e, ok := c.Get("home")
	require.True(t, ok)
	assert.Equal(t, "Home", e.Profile)
	assert.Equal(t, now, e.FetchedAt)
	assert.False(t, e.Stale())
	assert.Equal(t, []time.Time{day(10, 21), day(11, 4)}, e.Pickups["Restmüll"])

	// Get hands out copies.
	e.Pickups["Restmüll"][0] = day(1, 1)
	again, _ := c.Get("home")
	assert.Equal(t, day(10, 21), again.Pickups["Restmüll"][0])
}

func TestRecordFailureKeepsPickups(t *testing.T) {
	c := New(t.TempDir())
	c.Store("home", api.PickupResult{"Biomüll": {day(10, 22)}})
	fetched, _ := c.Get("home")

	later := fetched.FetchedAt.Add(time.Hour)
	c.now = fixedClock(later)
	c.RecordFailure("home")
	c.RecordFailure("home")

	e, ok := c.Get("home")
	require.True(t, ok)
	assert.True(t, e.Stale())
	assert.Equal(t, 2, e.Failures)
	assert.Equal(t, fetched.FetchedAt, e.FetchedAt)
	assert.Equal(t, later, e.LastAttempt)
	assert.Equal(t, []time.Time{day(10, 22)}, e.Pickups["Biomüll"])

	c.Store("home", api.PickupResult{"Biomüll": {day(11, 5)}})
	e, _ = c.Get("home")
	assert.Zero(t, e.Failures)
}

func TestPersistAndLoad(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.Store("home", api.PickupResult{"Restmüll": {day(10, 21)}, "Papier": {}})
	require.NoError(t, c.Persist())

	info, err := os.Stat(filepath.Join(dir, CacheFileName))
	require.NoError(t, err)
	assert.Equal(t, FilePermissions, info.Mode().Perm())

	loaded := New(dir)
	e, ok := loaded.Get("HOME")
	require.True(t, ok)
	assert.True(t, e.Pickups["Restmüll"][0].Equal(day(10, 21)))
	assert.Empty(t, e.Pickups["Papier"])
}

func TestPersistPrunesOldEntries(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Store("old", api.PickupResult{})

	c.now = fixedClock(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, c.Persist())

	_, ok := c.Get("old")
	assert.False(t, ok)
	_, err := os.Stat(filepath.Join(dir, CacheFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestForget(t *testing.T) {
	c := New(t.TempDir())
	c.Store("home", nil)
	c.Forget("Home")
	_, ok := c.Get("home")
	assert.False(t, ok)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CacheFileName), []byte("{oops"), 0600))

	c := New(dir)
	_, ok := c.Get("home")
	assert.False(t, ok)
}
