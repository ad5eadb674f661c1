package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/notify"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/services"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	// Note: on Vercel the local sqlite file is ephemeral; point DATABASE_URL
	// at a remote libsql/Turso database for anything durable.
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	notifier := notify.NewLogNotifier(log)
	bookmarkService := services.NewBookmarkService(repo)
	authService := services.NewAuthService(repo, notifier, log, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	mux = handler.NewRouter(cfg, bookmarkService, authService, log)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
