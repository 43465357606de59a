package handlers

import (
	"net/http"

	"github.com/jwebster45206/fallhouse/internal/views"
)

// NewRouter wires the game, its static assets and the JSON endpoints. Only the
// game pages go through the session reset hook.
func NewRouter(game *GameHandler, health *HealthHandler, sessionAPI *SessionHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/static/", views.StaticHandler("/static/"))
	mux.Handle("/health", health)
	mux.Handle("/api/session", sessionAPI)
	mux.Handle("/", game)
	return mux
}
