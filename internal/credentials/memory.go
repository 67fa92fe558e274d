package credentials

import (
	"sync"
	"time"
)

// MemoryStore keeps the credential record in process memory. Useful for
// tests and for environments without a writable config directory.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Save(access, refresh string, accessTTL, refreshTTL time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.creds = Credentials{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  expiresAt(now, accessTTL),
		RefreshExpiresAt: expiresAt(now, refreshTTL),
	}
}

func (m *MemoryStore) AccessToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds.AccessToken == "" || expired(m.now(), m.creds.AccessExpiresAt) {
		return "", false
	}
	return m.creds.AccessToken, true
}

func (m *MemoryStore) RefreshToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds.RefreshToken == "" || expired(m.now(), m.creds.RefreshExpiresAt) {
		return "", false
	}
	return m.creds.RefreshToken, true
}

func (m *MemoryStore) HasRefreshToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds.RefreshToken != ""
}

func (m *MemoryStore) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds.AccessToken != "" && !expired(m.now(), m.creds.AccessExpiresAt) {
		return true
	}
	return m.creds.RefreshToken != ""
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
}
