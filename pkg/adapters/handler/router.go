package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, bookmarks ports.BookmarkService, auth ports.AuthService, log zerolog.Logger) http.Handler {
	h := NewHTTPHandler(bookmarks, cfg.BaseURL, log)
	authHandler := NewAuthHandler(cfg, auth, log)
	mw := NewMiddleware(auth, log)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/token/refresh", authHandler.Refresh)
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// The redirect endpoint is deliberately unauthenticated: a short link is
	// public to anyone holding the code.
	mux.HandleFunc("GET /{code}", h.Redirect)

	// Protected Routes
	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/v1/auth/me", authHandler.Me)
	protected.HandleFunc("POST /api/v1/bookmarks", h.Create)
	protected.HandleFunc("GET /api/v1/bookmarks", h.List)
	protected.HandleFunc("GET /api/v1/bookmarks/stats", h.Stats)
	protected.HandleFunc("GET /api/v1/bookmarks/{id}", h.Get)
	protected.HandleFunc("PUT /api/v1/bookmarks/{id}", h.Update)
	protected.HandleFunc("PATCH /api/v1/bookmarks/{id}", h.Update)
	protected.HandleFunc("DELETE /api/v1/bookmarks/{id}", h.Delete)

	mux.Handle("/api/v1/auth/me", mw.Auth(protected))
	mux.Handle("/api/v1/bookmarks", mw.Auth(protected))
	mux.Handle("/api/v1/bookmarks/", mw.Auth(protected))

	return mw.Logging(mux)
}
