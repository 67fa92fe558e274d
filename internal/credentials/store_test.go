package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock lets tests move time forward without sleeping.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time {
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestStores(t *testing.T) map[string]struct {
	store Store
	clock *fixedClock
} {
	t.Helper()
	stores := make(map[string]struct {
		store Store
		clock *fixedClock
	})

	memClock := &fixedClock{t: time.Now()}
	mem := NewMemoryStore()
	mem.now = memClock.now
	stores["memory"] = struct {
		store Store
		clock *fixedClock
	}{mem, memClock}

	fileClock := &fixedClock{t: time.Now()}
	fs := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"), zerolog.Nop())
	fs.now = fileClock.now
	stores["file"] = struct {
		store Store
		clock *fixedClock
	}{fs, fileClock}

	return stores
}

func TestSaveAndGet(t *testing.T) {
	for name, tc := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			tc.store.Save("a1", "r1", 15*time.Minute, 30*24*time.Hour)

			access, ok := tc.store.AccessToken()
			require.True(t, ok)
			assert.Equal(t, "a1", access)

			refresh, ok := tc.store.RefreshToken()
			require.True(t, ok)
			assert.Equal(t, "r1", refresh)

			assert.True(t, tc.store.HasRefreshToken())
			assert.True(t, tc.store.IsAuthenticated())
		})
	}
}

func TestZeroAccessTTLExpiresImmediately(t *testing.T) {
	for name, tc := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			tc.store.Save("a1", "r1", 0, 30*24*time.Hour)

			_, ok := tc.store.AccessToken()
			assert.False(t, ok, "zero-TTL access token must be treated as expired")

			refresh, ok := tc.store.RefreshToken()
			require.True(t, ok)
			assert.Equal(t, "r1", refresh)

			// Session is still recoverable through the refresh token.
			assert.True(t, tc.store.IsAuthenticated())
		})
	}
}

func TestExpiryIsLazy(t *testing.T) {
	for name, tc := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			tc.store.Save("a1", "r1", 15*time.Minute, time.Hour)

			tc.clock.advance(16 * time.Minute)
			_, ok := tc.store.AccessToken()
			assert.False(t, ok)

			// Refresh token has its own expiry and is still valid.
			_, ok = tc.store.RefreshToken()
			assert.True(t, ok)

			tc.clock.advance(time.Hour)
			_, ok = tc.store.RefreshToken()
			assert.False(t, ok)

			// Expired refresh tokens still exist for HasRefreshToken.
			assert.True(t, tc.store.HasRefreshToken())
			assert.True(t, tc.store.IsAuthenticated())
		})
	}
}

func TestSaveOverwritesWholeRecord(t *testing.T) {
	for name, tc := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			tc.store.Save("a1", "r1", 0, 0)
			tc.store.Save("a2", "r2", 15*time.Minute, time.Hour)

			access, ok := tc.store.AccessToken()
			require.True(t, ok)
			assert.Equal(t, "a2", access)

			refresh, ok := tc.store.RefreshToken()
			require.True(t, ok)
			assert.Equal(t, "r2", refresh)
		})
	}
}

func TestClearIsIdempotent(t *testing.T) {
	for name, tc := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			tc.store.Save("a1", "r1", 15*time.Minute, time.Hour)
			tc.store.Clear()
			tc.store.Clear()

			_, ok := tc.store.AccessToken()
			assert.False(t, ok)
			assert.False(t, tc.store.HasRefreshToken())
			assert.False(t, tc.store.IsAuthenticated())
		})
	}
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	fs := NewFileStore(path, zerolog.Nop())
	fs.Save("a1", "r1", 15*time.Minute, time.Hour)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreSurvivesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	fs := NewFileStore(path, zerolog.Nop())
	_, ok := fs.AccessToken()
	assert.False(t, ok)
	assert.False(t, fs.IsAuthenticated())

	// A save replaces the corrupt file wholesale.
	fs.Save("a1", "r1", 15*time.Minute, time.Hour)
	access, ok := fs.AccessToken()
	require.True(t, ok)
	assert.Equal(t, "a1", access)
}
