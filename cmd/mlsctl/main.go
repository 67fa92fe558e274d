package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/stevenovak55/bmnboston-sub021/internal/api"
	"github.com/stevenovak55/bmnboston-sub021/internal/app"
	"github.com/stevenovak55/bmnboston-sub021/internal/config"
	"github.com/stevenovak55/bmnboston-sub021/internal/credentials"
	"github.com/stevenovak55/bmnboston-sub021/internal/logger"
	"github.com/stevenovak55/bmnboston-sub021/internal/mls"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to an optional .env file")
	login := flag.Bool("login", false, "Sign in with -email and -password")
	email := flag.String("email", "", "Account email for -login")
	password := flag.String("password", "", "Account password for -login")
	logout := flag.Bool("logout", false, "Sign out and clear stored credentials")
	search := flag.String("search", "", "Run a keyword listing search")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		bootLog := logger.New("", "")
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	a := app.New(cfg, log)
	reportAuthStatus(a.Store, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch {
	case *login:
		if *email == "" || *password == "" {
			log.Fatal().Msg("-login requires -email and -password")
		}
		user, err := a.MLS.Login(ctx, *email, *password)
		if err != nil {
			log.Error().Err(err).Msg("login failed")
			log.Info().Msg(api.UserMessage(err))
			os.Exit(1)
		}
		log.Info().Str("email", user.Email).Str("name", user.DisplayName).Msg("signed in")
	case *logout:
		a.MLS.Logout(ctx)
		log.Info().Msg("signed out")
	case *search != "":
		listings, err := a.MLS.SearchListings(ctx, mls.SearchFilters{Keyword: *search, PerPage: 10})
		if err != nil {
			log.Error().Err(err).Msg("search failed")
			log.Info().Msg(api.UserMessage(err))
			os.Exit(1)
		}
		for _, l := range listings {
			log.Info().
				Str("mls", l.MLSNumber).
				Str("address", l.Address).
				Str("city", l.City).
				Int64("price", l.Price).
				Int("beds", l.Beds).
				Msg("listing")
		}
		log.Info().Int("count", len(listings)).Msg("search finished")
	}
}

func reportAuthStatus(store credentials.Store, log zerolog.Logger) {
	if access, ok := store.AccessToken(); ok {
		log.Info().Int("token_length", len(access)).Msg("access token loaded")
		return
	}
	if store.HasRefreshToken() {
		log.Info().Msg("access token expired, will refresh on first request")
		return
	}
	log.Info().Msg("not signed in")
}
