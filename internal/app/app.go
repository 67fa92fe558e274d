package app

import (
	"github.com/rs/zerolog"

	"github.com/stevenovak55/bmnboston-sub021/internal/api"
	"github.com/stevenovak55/bmnboston-sub021/internal/config"
	"github.com/stevenovak55/bmnboston-sub021/internal/credentials"
	"github.com/stevenovak55/bmnboston-sub021/internal/mls"
)

// App wires the credential store, request coordinator and MLS service
// together. Everything is injected explicitly; there are no shared
// singletons.
type App struct {
	Store credentials.Store
	API   *api.Client
	MLS   *mls.Service
}

// New builds the app from configuration. Legacy on-disk tokens are
// migrated into the secure store once, before anything reads it.
func New(cfg *config.Config, logger zerolog.Logger) *App {
	store := credentials.NewFileStore(cfg.CredentialsPath, logger)
	if err := credentials.MigrateLegacy(cfg.LegacyCredentialsPath, store, logger); err != nil {
		logger.Warn().Err(err).Msg("legacy credential migration failed")
	}

	client := api.New(api.BaseURLs{
		App:  cfg.AppBaseURL,
		Site: cfg.SiteBaseURL,
		MLD:  cfg.MLDBaseURL,
	}, store, api.NewHTTPClient(cfg.RequestTimeout), logger)

	return &App{
		Store: store,
		API:   client,
		MLS:   mls.NewService(client, store, logger),
	}
}
