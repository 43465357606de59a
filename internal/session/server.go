package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jwebster45206/fallhouse/pkg/state"
	"github.com/jwebster45206/fallhouse/pkg/storage"
)

const idKey = "id"

// ServerStore keeps only a signed session ID in the cookie and the record in
// a storage backend (Redis or bbolt).
type ServerStore struct {
	cookies *sessions.CookieStore
	backend storage.Storage
	name    string
	opts    Options
}

var _ Store = (*ServerStore)(nil)

// NewServerStore creates a store backed by backend. name labels the backend
// in logs and health output.
func NewServerStore(name string, backend storage.Storage, secret []byte, opts Options) *ServerStore {
	opts = opts.withDefaults()

	cs := sessions.NewCookieStore(secret)
	cs.MaxAge(int(opts.MaxAge.Seconds()))
	cs.Options.Path = "/"
	cs.Options.HttpOnly = true
	cs.Options.Secure = opts.Secure
	cs.Options.SameSite = http.SameSiteLaxMode

	return &ServerStore{
		cookies: cs,
		backend: backend,
		name:    name,
		opts:    opts,
	}
}

func (s *ServerStore) Load(r *http.Request) (*state.Session, error) {
	id, ok, err := s.sessionID(r)
	if err != nil {
		return state.NewSession(), err
	}
	if !ok {
		return state.NewSession(), nil
	}

	rec, err := s.backend.LoadSession(r.Context(), id)
	if err != nil {
		return state.NewSession(), fmt.Errorf("load session %s: %w", id, err)
	}

	sess, err := state.FromRecord(rec)
	if err != nil {
		return sess, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return sess, nil
}

func (s *ServerStore) Save(w http.ResponseWriter, r *http.Request, sess *state.Session) error {
	// An unreadable or tampered ID cookie is replaced by a new ID. Load has
	// already reported it.
	id, ok, _ := s.sessionID(r)
	if !ok {
		id = uuid.New()
	}

	rec := sess.Record()
	if err := s.backend.SaveSession(r.Context(), id, &rec, s.opts.MaxAge); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}

	cookie := sessions.NewSession(s.cookies, s.opts.CookieName)
	opts := *s.cookies.Options
	opts.MaxAge = s.opts.cookieMaxAge(sess)
	cookie.Options = &opts
	cookie.Values[idKey] = id.String()

	if err := s.cookies.Save(r, w, cookie); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

func (s *ServerStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *ServerStore) Name() string { return s.name }

// sessionID reads the signed ID from the request cookie. ok is false when
// there is no usable ID.
func (s *ServerStore) sessionID(r *http.Request) (uuid.UUID, bool, error) {
	cookie, err := s.cookies.New(r, s.opts.CookieName)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	raw, ok := cookie.Values[idKey].(string)
	if !ok {
		return uuid.Nil, false, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return id, true, nil
}
