package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// legacyTokens is the old unsecured token file format. It carried no
// expiry fields at all.
type legacyTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Legacy tokens have no recorded expiry. The refresh token is assumed to
// match the server's standard 30-day issuance; this is a heuristic, not a
// value recovered from the server.
const legacyRefreshLifetime = 30 * 24 * time.Hour

// MigrateLegacy moves tokens from the old unsecured file into store and
// deletes the old file. The access token's original expiry is unknown, so
// it is stored already expired and recovered through a refresh on first
// use. The migration is one-shot and idempotent: once the legacy file is
// gone, repeated runs are no-ops.
func MigrateLegacy(legacyPath string, store Store, logger zerolog.Logger) error {
	if legacyPath == "" {
		return nil
	}
	b, err := os.ReadFile(legacyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read legacy token file: %w", err)
	}

	var legacy legacyTokens
	if err := json.Unmarshal(b, &legacy); err != nil {
		return fmt.Errorf("failed to parse legacy token file: %w", err)
	}

	if legacy.RefreshToken != "" {
		store.Save(legacy.AccessToken, legacy.RefreshToken, 0, legacyRefreshLifetime)
		logger.Info().Str("path", legacyPath).Msg("migrated legacy credentials to secure store")
	} else {
		logger.Warn().Str("path", legacyPath).Msg("legacy token file has no refresh token, discarding")
	}

	if err := os.Remove(legacyPath); err != nil {
		return fmt.Errorf("failed to remove legacy token file: %w", err)
	}
	return nil
}
