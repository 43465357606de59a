package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/fallhouse/internal/logger"
	"github.com/jwebster45206/fallhouse/internal/session"
	"github.com/jwebster45206/fallhouse/internal/views"
	"github.com/jwebster45206/fallhouse/pkg/state"
)

// GameHandler serves the pages of the house. For every request it loads the
// visitor's session, runs the reset hook, dispatches to the place handler,
// saves the session if it changed and finally renders the response.
type GameHandler struct {
	store  session.Store
	logger *slog.Logger
	routes map[string]PlaceFunc
}

func NewGameHandler(store session.Store, places Places, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		store:  store,
		logger: logger,
		routes: places.Routes(),
	}
}

func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Every page visit is a transition, so only GET is served.
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.store.Load(r)
	if err != nil {
		h.logger.Warn("Discarding unreadable session",
			"error", err,
			"backend", h.store.Name(),
			"path", r.URL.Path)
	}

	resp := h.dispatch(r, sess)

	if sess.Dirty() {
		if resp, err = h.save(w, r, sess, resp); err != nil {
			logger.WithError(h.logger, err).Error("Failed to save session",
				"backend", h.store.Name(),
				"path", r.URL.Path)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	if err := resp.Render(w, r); err != nil {
		logger.WithError(h.logger, err).Error("Failed to render response", "path", r.URL.Path)
	}
}

// save persists sess. A session that has outgrown its cookie is reset and the
// visitor is sent back to the start page.
func (h *GameHandler) save(w http.ResponseWriter, r *http.Request, sess *state.Session, resp Response) (Response, error) {
	err := h.store.Save(w, r, sess)
	if !errors.Is(err, session.ErrSessionTooLarge) {
		return resp, err
	}

	h.logger.Warn("Session outgrew its cookie, starting over",
		"error", err,
		"backend", h.store.Name(),
		"history_len", len(sess.History))
	sess.Reset()
	if err := h.store.Save(w, r, sess); err != nil {
		return nil, err
	}
	return Redirect{Location: views.PathIndex}, nil
}

func (h *GameHandler) dispatch(r *http.Request, sess *state.Session) Response {
	if resp := ResetHook(r.URL.Path, sess); resp != nil {
		h.logger.Debug("Reset hook redirected request",
			"path", r.URL.Path,
			"history_len", len(sess.History))
		return resp
	}

	fn, ok := h.routes[r.URL.Path]
	if !ok {
		return Status{Code: http.StatusNotFound}
	}

	resp := fn(r, sess)

	h.logger.Debug("Place handled",
		"path", r.URL.Path,
		"current_place", sess.CurrentPlace(),
		"last_place", sess.LastPlace(),
		"history_len", len(sess.History))
	if sess.GameOver {
		h.logger.Info("Game over", "history", sess.History.Strings())
	}

	return resp
}
