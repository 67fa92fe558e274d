package credentials

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileStore persists the credential record as a JSON file with 0600
// permissions. Writes go through a temp file and a rename, so a concurrent
// process never sees a half-written record. All operations are serialized
// through a single mutex.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewFileStore creates a file-backed credential store at path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger, now: time.Now}
}

func (f *FileStore) Save(access, refresh string, accessTTL, refreshTTL time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	creds := Credentials{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  expiresAt(now, accessTTL),
		RefreshExpiresAt: expiresAt(now, refreshTTL),
	}
	if err := f.write(&creds); err != nil {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("failed to persist credentials")
	}
}

func (f *FileStore) AccessToken() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	creds, ok := f.read()
	if !ok || creds.AccessToken == "" || expired(f.now(), creds.AccessExpiresAt) {
		return "", false
	}
	return creds.AccessToken, true
}

func (f *FileStore) RefreshToken() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	creds, ok := f.read()
	if !ok || creds.RefreshToken == "" || expired(f.now(), creds.RefreshExpiresAt) {
		return "", false
	}
	return creds.RefreshToken, true
}

func (f *FileStore) HasRefreshToken() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	creds, ok := f.read()
	return ok && creds.RefreshToken != ""
}

func (f *FileStore) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	creds, ok := f.read()
	if !ok {
		return false
	}
	if creds.AccessToken != "" && !expired(f.now(), creds.AccessExpiresAt) {
		return true
	}
	return creds.RefreshToken != ""
}

func (f *FileStore) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("failed to remove credentials file")
	}
}

func (f *FileStore) read() (*Credentials, bool) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn().Err(err).Str("path", f.path).Msg("failed to read credentials file")
		}
		return nil, false
	}
	var creds Credentials
	if err := json.Unmarshal(b, &creds); err != nil {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("failed to parse credentials file")
		return nil, false
	}
	return &creds, true
}

func (f *FileStore) write(creds *Credentials) error {
	if err := EnsureParentDir(f.path); err != nil {
		return err
	}
	b, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
