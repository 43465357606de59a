package handlers

import (
	"net/http"

	"github.com/a-h/templ"
)

// Response is what a place handler produces. It is rendered only after the
// session has been saved, so cookies are always set before the body.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Page renders a templ component with 200 OK.
type Page struct {
	Component templ.Component
}

func (p Page) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Pages depend on the session, never serve them from cache.
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	return p.Component.Render(r.Context(), w)
}

// Redirect sends a 302 to Location.
type Redirect struct {
	Location string
}

func (rd Redirect) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rd.Location, http.StatusFound)
	return nil
}

// Status writes a plain-text error status.
type Status struct {
	Code int
}

func (s Status) Render(w http.ResponseWriter, r *http.Request) error {
	http.Error(w, http.StatusText(s.Code), s.Code)
	return nil
}
