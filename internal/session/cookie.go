package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/jwebster45206/fallhouse/pkg/state"
)

const recordKey = "record"

// CookieStore keeps the whole session record in a signed cookie. The payload
// is readable by the client but cannot be altered without the secret.
type CookieStore struct {
	store *sessions.CookieStore
	opts  Options
}

var _ Store = (*CookieStore)(nil)

// NewCookieStore creates a gorilla/sessions backed cookie store signed with secret.
func NewCookieStore(secret []byte, opts Options) *CookieStore {
	opts = opts.withDefaults()

	s := sessions.NewCookieStore(secret)
	s.MaxAge(int(opts.MaxAge.Seconds()))
	s.Options.Path = "/"
	s.Options.HttpOnly = true
	s.Options.Secure = opts.Secure
	s.Options.SameSite = http.SameSiteLaxMode
	// Save enforces maxCookieSize itself so it can report ErrSessionTooLarge.
	for _, codec := range s.Codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxLength(0)
		}
	}

	return &CookieStore{store: s, opts: opts}
}

func (c *CookieStore) Load(r *http.Request) (*state.Session, error) {
	sess, err := c.store.New(r, c.opts.CookieName)
	if err != nil {
		return state.NewSession(), fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	raw, ok := sess.Values[recordKey].(string)
	if !ok {
		return state.NewSession(), nil
	}

	var rec state.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return state.NewSession(), fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	s, err := state.FromRecord(&rec)
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return s, nil
}

func (c *CookieStore) Save(w http.ResponseWriter, r *http.Request, s *state.Session) error {
	data, err := json.Marshal(s.Record())
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	values := map[any]any{recordKey: string(data)}
	encoded, err := securecookie.EncodeMulti(c.opts.CookieName, values, c.store.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	if n := cookieSize(c.opts.CookieName, encoded); n > maxCookieSize {
		return fmt.Errorf("%w: %d bytes", ErrSessionTooLarge, n)
	}

	opts := *c.store.Options
	opts.MaxAge = c.opts.cookieMaxAge(s)
	http.SetCookie(w, sessions.NewCookie(c.opts.CookieName, encoded, &opts))
	return nil
}

func (c *CookieStore) Ping(ctx context.Context) error { return nil }

func (c *CookieStore) Name() string { return "cookie" }
