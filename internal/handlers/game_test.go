package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/fallhouse/internal/session"
	"github.com/jwebster45206/fallhouse/internal/views"
	"github.com/jwebster45206/fallhouse/pkg/place"
	"github.com/jwebster45206/fallhouse/pkg/state"
	"github.com/jwebster45206/fallhouse/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func testStores() map[string]func() session.Store {
	opts := session.Options{CookieName: "session", MaxAge: time.Hour}
	return map[string]func() session.Store{
		"cookie": func() session.Store { return session.NewCookieStore(testSecret, opts) },
		"jwt":    func() session.Store { return session.NewJWTStore(testSecret, opts) },
		"server": func() session.Store {
			return session.NewServerStore("memory", storage.NewMockStorage(), testSecret, opts)
		},
	}
}

func newRouter(store session.Store, places Places) http.Handler {
	logger := testLogger()
	return NewRouter(
		NewGameHandler(store, places, logger),
		NewHealthHandler(store, logger),
		NewSessionHandler(store, logger),
	)
}

// player is a browser with a cookie jar that does not follow redirects.
type player struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newPlayer(t *testing.T, handler http.Handler) *player {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &player{
		t: t,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		base: srv.URL,
	}
}

type page struct {
	status   int
	location string
	body     string
	header   http.Header
}

func (p *player) do(method, path string) page {
	p.t.Helper()
	req, err := http.NewRequest(method, p.base+path, nil)
	require.NoError(p.t, err)
	resp, err := p.client.Do(req)
	require.NoError(p.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(p.t, err)
	return page{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
		header:   resp.Header,
	}
}

func (p *player) get(path string) page {
	p.t.Helper()
	return p.do(http.MethodGet, path)
}

// visit requests path and requires a rendered page.
func (p *player) visit(path string) string {
	p.t.Helper()
	pg := p.get(path)
	require.Equal(p.t, http.StatusOK, pg.status, "GET %s", path)
	return pg.body
}

func (p *player) session() SessionResponse {
	p.t.Helper()
	pg := p.get("/api/session")
	require.Equal(p.t, http.StatusOK, pg.status)
	var resp SessionResponse
	require.NoError(p.t, json.Unmarshal([]byte(pg.body), &resp))
	return resp
}

// start walks a fresh visitor through the reset redirect.
func (p *player) start() {
	p.t.Helper()
	pg := p.get(views.PathIndex)
	require.Equal(p.t, http.StatusFound, pg.status)
	require.Equal(p.t, views.PathIndex, pg.location)
}

func forEachStore(t *testing.T, fn func(t *testing.T, store session.Store)) {
	for name, newStore := range testStores() {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore())
		})
	}
}

func TestGame_FreshVisitorIsReset(t *testing.T) {
	paths := []string{
		views.PathRoot,
		views.PathIndex,
		views.PathFrontDoor,
		views.PathSecondFloor,
		views.PathWindow,
		"/cellar.htm",
	}

	forEachStore(t, func(t *testing.T, store session.Store) {
		for _, path := range paths {
			p := newPlayer(t, newRouter(store, Places{ClimbBranch: true}))

			assert.False(t, p.session().Started)

			pg := p.get(path)
			assert.Equal(t, http.StatusFound, pg.status, path)
			assert.Equal(t, views.PathIndex, pg.location, path)
			assert.NotEmpty(t, pg.header.Values("Set-Cookie"), path)

			sess := p.session()
			assert.True(t, sess.Started, path)
			assert.Equal(t, state.History{}, sess.History, path)
			assert.False(t, sess.GameOver, path)
		}
	})
}

func TestGame_DeepLinkWithEmptyHistory(t *testing.T) {
	forEachStore(t, func(t *testing.T, store session.Store) {
		p := newPlayer(t, newRouter(store, Places{ClimbBranch: true}))
		p.start()

		for _, path := range []string{views.PathFirstFloor, views.PathSecondFloor, views.PathWindow} {
			pg := p.get(path)
			assert.Equal(t, http.StatusFound, pg.status, path)
			assert.Equal(t, views.PathFrontDoor, pg.location, path)
		}
		assert.Empty(t, p.session().History)

		p.visit(views.PathFrontDoor)
		assert.Equal(t, state.History{place.FrontDoor}, p.session().History)
	})
}

func TestGame_FellOffEndsGame(t *testing.T) {
	forEachStore(t, func(t *testing.T, store session.Store) {
		p := newPlayer(t, newRouter(store, Places{ClimbBranch: true}))
		p.start()

		p.visit(views.PathFrontDoor)
		p.visit(views.PathSecondFloor)
		body := p.visit(views.PathFrontDoor)
		assert.Contains(t, body, "You Fell")
		assert.Contains(t, body, `class="place ending"`)

		sess := p.session()
		assert.True(t, sess.GameOver)
		assert.Equal(t, state.History{place.FrontDoor, place.SecondFloor, place.FrontDoor}, sess.History)

		// Any request after the ending starts over.
		pg := p.get(views.PathFirstFloor)
		assert.Equal(t, http.StatusFound, pg.status)
		assert.Equal(t, views.PathIndex, pg.location)

		sess = p.session()
		assert.False(t, sess.GameOver)
		assert.Equal(t, state.History{}, sess.History)

		body = p.visit(views.PathFrontDoor)
		assert.NotContains(t, body, "You Fell")
	})
}

func TestGame_ClimbBranch(t *testing.T) {
	const climbed = "palms scraped raw"

	for _, enabled := range []bool{true, false} {
		t.Run(map[bool]string{true: "enabled", false: "disabled"}[enabled], func(t *testing.T) {
			forEachStore(t, func(t *testing.T, store session.Store) {
				p := newPlayer(t, newRouter(store, Places{ClimbBranch: enabled}))
				p.start()

				p.visit(views.PathFrontDoor)
				body := p.visit(views.PathSecondFloor)
				assert.Contains(t, body, "The Second Floor")
				assert.Equal(t, enabled, strings.Contains(body, climbed))

				sess := p.session()
				assert.False(t, sess.GameOver)
				assert.Equal(t, place.SecondFloor, sess.CurrentPlace)
				assert.Equal(t, place.FrontDoor, sess.LastPlace)

				// Taking the stairs up is never the climbed variant.
				p.visit(views.PathFirstFloor)
				body = p.visit(views.PathSecondFloor)
				assert.NotContains(t, body, climbed)
			})
		})
	}
}

func TestGame_IndexDoesNotMutateHistory(t *testing.T) {
	forEachStore(t, func(t *testing.T, store session.Store) {
		p := newPlayer(t, newRouter(store, Places{ClimbBranch: true}))
		p.start()
		p.visit(views.PathFrontDoor)
		p.visit(views.PathFirstFloor)
		before := p.session().History

		for range 3 {
			pg := p.get(views.PathIndex)
			require.Equal(t, http.StatusOK, pg.status)
			assert.Empty(t, pg.header.Values("Set-Cookie"), "index must not rewrite the session")
		}

		pg := p.get(views.PathRoot)
		assert.Equal(t, http.StatusFound, pg.status)
		assert.Equal(t, views.PathIndex, pg.location)

		assert.Equal(t, before, p.session().History)
	})
}

func TestGame_RevisitAppends(t *testing.T) {
	forEachStore(t, func(t *testing.T, store session.Store) {
		p := newPlayer(t, newRouter(store, Places{ClimbBranch: true}))
		p.start()

		p.visit(views.PathFrontDoor)
		p.visit(views.PathFirstFloor)
		p.visit(views.PathFirstFloor)
		p.visit(views.PathSecondFloor)
		p.visit(views.PathWindow)
		p.visit(views.PathWindow)

		sess := p.session()
		assert.Equal(t, state.History{
			place.FrontDoor,
			place.FirstFloor,
			place.FirstFloor,
			place.SecondFloor,
			place.ThirdFloor,
			place.ThirdFloor,
		}, sess.History)
		assert.Equal(t, place.ThirdFloor, sess.CurrentPlace)
		assert.Equal(t, place.ThirdFloor, sess.LastPlace)
	})
}

func TestGame_NotFoundAfterStart(t *testing.T) {
	p := newPlayer(t, newRouter(session.NewCookieStore(testSecret, session.Options{}), Places{}))
	p.start()
	p.visit(views.PathFrontDoor)

	pg := p.get("/cellar.htm")
	assert.Equal(t, http.StatusNotFound, pg.status)
	assert.Equal(t, state.History{place.FrontDoor}, p.session().History)
}

func TestGame_MethodNotAllowed(t *testing.T) {
	p := newPlayer(t, newRouter(session.NewCookieStore(testSecret, session.Options{}), Places{}))

	for _, method := range []string{http.MethodPost, http.MethodHead, http.MethodPut} {
		pg := p.do(method, views.PathFrontDoor)
		assert.Equal(t, http.StatusMethodNotAllowed, pg.status, method)
		assert.Equal(t, "GET", pg.header.Get("Allow"), method)
	}
	assert.False(t, p.session().Started, "rejected requests never touch the session")

	p.start()
	p.visit(views.PathFrontDoor)
	pg := p.do(http.MethodHead, views.PathFirstFloor)
	assert.Equal(t, http.StatusMethodNotAllowed, pg.status)
	assert.Equal(t, state.History{place.FrontDoor}, p.session().History)
}

func TestGame_LongHistoryStartsOver(t *testing.T) {
	forEachStore(t, func(t *testing.T, store session.Store) {
		p := newPlayer(t, newRouter(store, Places{}))
		p.start()
		p.visit(views.PathFrontDoor)

		restartedAt := 0
		for i := 1; i <= 600; i++ {
			pg := p.get(views.PathFirstFloor)
			if pg.status == http.StatusOK {
				continue
			}
			require.Equal(t, http.StatusFound, pg.status, "visit %d", i)
			require.Equal(t, views.PathIndex, pg.location, "visit %d", i)
			restartedAt = i
			break
		}

		if store.Name() == "memory" {
			assert.Zero(t, restartedAt, "server-side history is not bound by cookie size")
			assert.Len(t, p.session().History, 601)
			return
		}
		require.NotZero(t, restartedAt, "cookie-held history must start over before it stops fitting")

		sess := p.session()
		assert.True(t, sess.Started)
		assert.Empty(t, sess.History)
		assert.False(t, sess.GameOver)

		p.visit(views.PathIndex)
		p.visit(views.PathFrontDoor)
		p.visit(views.PathFirstFloor)
		assert.Equal(t, state.History{place.FrontDoor, place.FirstFloor}, p.session().History)
	})
}

func TestGame_UnreadableSessionStartsOver(t *testing.T) {
	forEachStore(t, func(t *testing.T, store session.Store) {
		handler := newRouter(store, Places{ClimbBranch: true})

		req := httptest.NewRequest(http.MethodGet, views.PathFirstFloor, nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "not-a-valid-token"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, views.PathIndex, rr.Header().Get("Location"))
		assert.NotEmpty(t, rr.Result().Cookies())
	})
}

func TestGame_SaveFailure(t *testing.T) {
	backend := storage.NewMockStorage()
	backend.SetSaveError(errors.New("disk full"))
	store := session.NewServerStore("memory", backend, testSecret, session.Options{})

	req := httptest.NewRequest(http.MethodGet, views.PathFrontDoor, nil)
	rr := httptest.NewRecorder()
	newRouter(store, Places{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, rr.Header().Get("Location"))
	assert.Empty(t, rr.Result().Cookies())
}

func TestGame_PageHeaders(t *testing.T) {
	p := newPlayer(t, newRouter(session.NewCookieStore(testSecret, session.Options{}), Places{}))
	p.start()

	pg := p.get(views.PathFrontDoor)
	require.Equal(t, http.StatusOK, pg.status)
	assert.Equal(t, "text/html; charset=utf-8", pg.header.Get("Content-Type"))
	assert.Equal(t, "no-store", pg.header.Get("Cache-Control"))
	assert.Contains(t, pg.body, `data-place="frontdoor"`)
}

func TestRouter_StaticSkipsSession(t *testing.T) {
	p := newPlayer(t, newRouter(session.NewCookieStore(testSecret, session.Options{}), Places{}))

	pg := p.get("/static/style.css")
	assert.Equal(t, http.StatusOK, pg.status)
	assert.Contains(t, pg.header.Get("Content-Type"), "text/css")
	assert.Empty(t, pg.header.Values("Set-Cookie"))
	assert.False(t, p.session().Started)
}

func TestSessionHandler(t *testing.T) {
	p := newPlayer(t, newRouter(session.NewJWTStore(testSecret, session.Options{}), Places{}))

	pg := p.get("/api/session")
	require.Equal(t, http.StatusOK, pg.status)
	assert.Equal(t, "application/json", pg.header.Get("Content-Type"))
	assert.Empty(t, pg.header.Values("Set-Cookie"))
	assert.JSONEq(t, `{"started":false,"history":[],"current_place":"none","last_place":"none","gameover":false}`, pg.body)

	p.start()
	p.visit(views.PathFrontDoor)
	p.visit(views.PathSecondFloor)

	pg = p.get("/api/session")
	assert.JSONEq(t, `{"started":true,"history":["frontdoor","secondfloor"],"current_place":"secondfloor","last_place":"frontdoor","gameover":false}`, pg.body)

	pg = p.do(http.MethodPost, "/api/session")
	assert.Equal(t, http.StatusMethodNotAllowed, pg.status)
}
