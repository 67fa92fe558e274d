package credentials

import "time"

// Credentials is the persisted token record. Access and refresh expiries
// are tracked independently; conflating the two is a known bug class.
// Expiry timestamps are Unix milliseconds.
type Credentials struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresAt  int64  `json:"access_expires_at"`
	RefreshExpiresAt int64  `json:"refresh_expires_at"`
}

// Store is the sole source of truth for "is a token available and
// non-expired". Implementations serialize all operations; a reader never
// observes a partially written record.
type Store interface {
	// Save computes absolute expiries from the current time plus the given
	// TTLs and overwrites the whole record. A TTL <= 0 produces a token
	// that is already expired. Save never fails from the caller's point of
	// view: persistence errors are logged and swallowed, because failing
	// to cache a token must not fail the login that produced it.
	Save(access, refresh string, accessTTL, refreshTTL time.Duration)

	// AccessToken returns the access token if one is stored and not yet
	// expired. Expiry is surfaced lazily; stored state is not mutated.
	AccessToken() (string, bool)

	// RefreshToken returns the refresh token if one is stored and not yet
	// expired, checked against its own expiry.
	RefreshToken() (string, bool)

	// HasRefreshToken reports whether a refresh token exists at all,
	// regardless of expiry. Used to decide whether a refresh attempt is
	// worth making.
	HasRefreshToken() bool

	// IsAuthenticated reports whether the session is usable or at least
	// recoverable: a non-expired access token exists, or a refresh token
	// of any validity exists.
	IsAuthenticated() bool

	// Clear wipes the whole record. Idempotent.
	Clear()
}

func expiresAt(now time.Time, ttl time.Duration) int64 {
	return now.Add(ttl).UnixMilli()
}

func expired(now time.Time, expiresAtMs int64) bool {
	return now.UnixMilli() >= expiresAtMs
}
