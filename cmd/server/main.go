package main

import (
	"net/http"
	"time"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/notify"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/services"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer repo.Close()

	// Mail is optional; without an SMTP server notifications go to the log.
	var notifier ports.Notifier
	if cfg.SMTPAddr != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPFrom)
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	// Initialize Services
	bookmarkService := services.NewBookmarkService(repo)
	authService := services.NewAuthService(repo, notifier, log, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Initialize Router
	mux := handler.NewRouter(cfg, bookmarkService, authService, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
