package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	sentrygo "github.com/getsentry/sentry-go"

	"github.com/tunecircle/backend/internal/broker"
	"github.com/tunecircle/backend/internal/config"
	"github.com/tunecircle/backend/internal/logging"
	"github.com/tunecircle/backend/internal/router"
	"github.com/tunecircle/backend/internal/sentry"
	"github.com/tunecircle/backend/internal/spotify"
	"github.com/tunecircle/backend/internal/store"
)

func main() {
	// Initialize structured logging (reads LOGGING_LEVEL env var)
	logging.Initialize()

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry error tracking when a DSN is configured
	if cfg.SentryDSN != "" {
		err := sentrygo.Init(sentrygo.ClientOptions{
			Dsn:                   cfg.SentryDSN,
			Environment:           cfg.SentryEnvironment,
			BeforeSend:            sentry.ScrubEvent,
			BeforeSendTransaction: sentry.ScrubTransaction,
		})
		if err != nil {
			slog.Error("failed to initialize sentry", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer sentrygo.Flush(2 * time.Second)
	}

	// Open database and run migrations
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	deps := router.Deps{
		Store:      st,
		Broker:     broker.New(),
		NewCatalog: spotify.NewCatalog,
	}
	if cfg.SpotifyLoginEnabled() {
		deps.OAuth = spotify.NewAuthenticator(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURL)
		deps.Refresher = spotify.NewRefresher(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	} else {
		slog.Warn("spotify credentials not configured, spotify login disabled")
	}

	// Create router
	r := router.New(cfg, deps)

	// Start server
	addr := ":" + cfg.Port
	slog.Info("starting server", slog.String("addr", addr))

	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
