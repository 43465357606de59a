// Package session loads and saves a visitor's game session around each
// request. The game logic never sees cookies or tokens; it works on the
// *state.Session a Store hands it.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jwebster45206/fallhouse/pkg/state"
)

// ErrInvalidSession reports a session token that was present but could not be
// trusted or decoded. Callers treat it like a first visit.
var ErrInvalidSession = errors.New("invalid session")

// ErrSessionTooLarge reports a session that no longer fits in a cookie. Nothing
// was written; callers are expected to reset the session and save again.
var ErrSessionTooLarge = errors.New("session too large for cookie")

// maxCookieSize is the largest name=value pair a client-side store writes.
// Browsers guarantee 4096 bytes per cookie including attributes.
const maxCookieSize = 4000

func cookieSize(name, value string) int {
	return len(name) + 1 + len(value)
}

// Store carries a state.Session between requests.
type Store interface {
	// Load always returns a usable session. When the request carries no
	// session, or one that cannot be decoded, the session has no history and
	// the error (if any) explains why.
	Load(r *http.Request) (*state.Session, error)
	// Save persists s and sets whatever cookie the store needs. It must be
	// called before the response body is written.
	Save(w http.ResponseWriter, r *http.Request, s *state.Session) error
	// Ping checks any backing service the store depends on.
	Ping(ctx context.Context) error
	// Name identifies the backend in logs and health reports.
	Name() string
}

// Options are shared by all stores.
type Options struct {
	CookieName string
	// MaxAge is the lifetime of a persistent session. Sessions that were
	// never reset are written as browser-session cookies.
	MaxAge time.Duration
	Secure bool
}

func (o Options) withDefaults() Options {
	if o.CookieName == "" {
		o.CookieName = "session"
	}
	if o.MaxAge <= 0 {
		o.MaxAge = 31 * 24 * time.Hour
	}
	return o
}

func (o Options) cookieMaxAge(s *state.Session) int {
	if !s.Persistent() {
		return 0
	}
	return int(o.MaxAge / time.Second)
}
