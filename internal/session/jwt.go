package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jwebster45206/fallhouse/pkg/state"
)

const jwtIssuer = "fallhouse"

// Claims is the JWT payload: the session record plus standard claims.
type Claims struct {
	state.Record
	jwt.RegisteredClaims
}

// JWTStore keeps the session record in an HS256-signed JWT stored in a cookie.
type JWTStore struct {
	key  []byte
	opts Options
	now  func() time.Time
}

var _ Store = (*JWTStore)(nil)

func NewJWTStore(secret []byte, opts Options) *JWTStore {
	return &JWTStore{
		key:  secret,
		opts: opts.withDefaults(),
		now:  time.Now,
	}
}

func (j *JWTStore) Load(r *http.Request) (*state.Session, error) {
	cookie, err := r.Cookie(j.opts.CookieName)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && cookie.Value == "") {
		return state.NewSession(), nil
	}
	if err != nil {
		return state.NewSession(), fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, err := j.parse(cookie.Value)
	if err != nil {
		return state.NewSession(), fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	s, err := state.FromRecord(&claims.Record)
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return s, nil
}

func (j *JWTStore) Save(w http.ResponseWriter, r *http.Request, s *state.Session) error {
	token, err := j.sign(s.Record())
	if err != nil {
		return err
	}
	if n := cookieSize(j.opts.CookieName, token); n > maxCookieSize {
		return fmt.Errorf("%w: %d bytes", ErrSessionTooLarge, n)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     j.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   j.opts.cookieMaxAge(s),
		HttpOnly: true,
		Secure:   j.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (j *JWTStore) Ping(ctx context.Context) error { return nil }

func (j *JWTStore) Name() string { return "jwt" }

func (j *JWTStore) sign(rec state.Record) (string, error) {
	now := j.now()
	claims := Claims{
		Record: rec,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.opts.MaxAge)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (j *JWTStore) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.key, nil
	}, jwt.WithIssuer(jwtIssuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
