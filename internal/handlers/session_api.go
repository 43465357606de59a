package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/fallhouse/internal/session"
	"github.com/jwebster45206/fallhouse/pkg/place"
	"github.com/jwebster45206/fallhouse/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionResponse is the JSON view of a visitor's session.
type SessionResponse struct {
	Started      bool          `json:"started"`
	History      state.History `json:"history"`
	CurrentPlace place.Place   `json:"current_place"`
	LastPlace    place.Place   `json:"last_place"`
	GameOver     bool          `json:"gameover"`
}

// SessionHandler reports the visitor's session without modifying it. It is
// not subject to the reset hook and never issues a cookie.
type SessionHandler struct {
	store  session.Store
	logger *slog.Logger
}

func NewSessionHandler(store session.Store, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:  store,
		logger: logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Method not allowed. Only GET is supported at /api/session."}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	sess, err := h.store.Load(r)
	if err != nil {
		h.logger.Debug("Session unreadable, reporting as not started", "error", err)
	}

	history := sess.History
	if history == nil {
		history = state.History{}
	}
	response := SessionResponse{
		Started:      sess.HasHistory(),
		History:      history,
		CurrentPlace: sess.CurrentPlace(),
		LastPlace:    sess.LastPlace(),
		GameOver:     sess.GameOver,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}
