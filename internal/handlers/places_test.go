package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/fallhouse/internal/views"
	"github.com/jwebster45206/fallhouse/pkg/place"
	"github.com/jwebster45206/fallhouse/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedSession(history ...place.Place) *state.Session {
	s := state.NewSession()
	s.Reset()
	for _, p := range history {
		s.Visit(p)
	}
	return s
}

func TestResetHook(t *testing.T) {
	tests := []struct {
		name         string
		session      func() *state.Session
		path         string
		wantRedirect string
		wantReset    bool
	}{
		{
			name:         "no history resets to index",
			session:      state.NewSession,
			path:         views.PathFirstFloor,
			wantRedirect: views.PathIndex,
			wantReset:    true,
		},
		{
			name:         "no history on index still resets",
			session:      state.NewSession,
			path:         views.PathIndex,
			wantRedirect: views.PathIndex,
			wantReset:    true,
		},
		{
			name: "game over resets",
			session: func() *state.Session {
				s := startedSession(place.FrontDoor, place.SecondFloor, place.FrontDoor)
				s.EndGame()
				return s
			},
			path:         views.PathFrontDoor,
			wantRedirect: views.PathIndex,
			wantReset:    true,
		},
		{
			name:         "empty history deep link goes to front door",
			session:      func() *state.Session { return startedSession() },
			path:         views.PathSecondFloor,
			wantRedirect: views.PathFrontDoor,
		},
		{
			name:         "empty history unknown path goes to front door",
			session:      func() *state.Session { return startedSession() },
			path:         "/cellar.htm",
			wantRedirect: views.PathFrontDoor,
		},
		{
			name:    "empty history may enter at root",
			session: func() *state.Session { return startedSession() },
			path:    views.PathRoot,
		},
		{
			name:    "empty history may enter at index",
			session: func() *state.Session { return startedSession() },
			path:    views.PathIndex,
		},
		{
			name:    "empty history may enter at front door",
			session: func() *state.Session { return startedSession() },
			path:    views.PathFrontDoor,
		},
		{
			name:    "history allows any place",
			session: func() *state.Session { return startedSession(place.FrontDoor) },
			path:    views.PathWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.session()
			resp := ResetHook(tt.path, s)

			if tt.wantRedirect == "" {
				assert.Nil(t, resp)
				return
			}
			require.Equal(t, Redirect{Location: tt.wantRedirect}, resp)
			if tt.wantReset {
				assert.True(t, s.HasHistory())
				assert.Empty(t, s.History)
				assert.False(t, s.GameOver)
				assert.True(t, s.Persistent())
				assert.True(t, s.Dirty())
			}
		})
	}
}

func TestRecord(t *testing.T) {
	s := startedSession(place.FirstFloor)
	var seen place.Place

	fn := Record(place.SecondFloor, func(r *http.Request, s *state.Session) Response {
		seen = s.CurrentPlace()
		return Status{Code: http.StatusTeapot}
	})

	req := httptest.NewRequest(http.MethodGet, views.PathSecondFloor, nil)
	resp := fn(req, s)
	resp = fn(req, s)

	assert.Equal(t, Status{Code: http.StatusTeapot}, resp)
	assert.Equal(t, place.SecondFloor, seen, "place is recorded before the handler runs")
	assert.Equal(t, state.History{place.FirstFloor, place.SecondFloor, place.SecondFloor}, s.History)
	assert.True(t, s.Dirty())
}

func TestPlaces_FrontDoor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, views.PathFrontDoor, nil)
	routes := Places{}.Routes()

	t.Run("plain", func(t *testing.T) {
		s := startedSession(place.FirstFloor)
		resp := routes[views.PathFrontDoor](req, s)
		assert.False(t, s.GameOver)
		assert.Equal(t, place.FrontDoor, s.CurrentPlace())
		assert.Contains(t, renderBody(t, resp), "The Front Door")
	})

	t.Run("fell off after second floor", func(t *testing.T) {
		s := startedSession(place.FrontDoor, place.SecondFloor)
		resp := routes[views.PathFrontDoor](req, s)
		assert.True(t, s.GameOver)
		assert.Contains(t, renderBody(t, resp), "You Fell")
	})

	t.Run("second floor earlier in history does not count", func(t *testing.T) {
		s := startedSession(place.SecondFloor, place.FirstFloor)
		resp := routes[views.PathFrontDoor](req, s)
		assert.False(t, s.GameOver)
		assert.NotContains(t, renderBody(t, resp), "You Fell")
	})
}

func TestPlaces_SecondFloor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, views.PathSecondFloor, nil)
	const climbed = "palms scraped raw"

	tests := []struct {
		name        string
		climb       bool
		history     []place.Place
		wantClimbed bool
	}{
		{"climbed from front door", true, []place.Place{place.FrontDoor}, true},
		{"climb branch disabled", false, []place.Place{place.FrontDoor}, false},
		{"stairs from first floor", true, []place.Place{place.FrontDoor, place.FirstFloor}, false},
		{"down from the window", true, []place.Place{place.FrontDoor, place.SecondFloor, place.ThirdFloor}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := startedSession(tt.history...)
			resp := Places{ClimbBranch: tt.climb}.Routes()[views.PathSecondFloor](req, s)

			body := renderBody(t, resp)
			assert.Contains(t, body, "The Second Floor")
			if tt.wantClimbed {
				assert.Contains(t, body, climbed)
			} else {
				assert.NotContains(t, body, climbed)
			}
			assert.False(t, s.GameOver)
			assert.Equal(t, place.SecondFloor, s.CurrentPlace())
		})
	}
}

func TestPlaces_IndexAndRootAreNotRecorded(t *testing.T) {
	routes := Places{}.Routes()
	s := startedSession(place.FrontDoor)

	resp := routes[views.PathIndex](httptest.NewRequest(http.MethodGet, views.PathIndex, nil), s)
	assert.Contains(t, renderBody(t, resp), "The House on the Hill")

	resp = routes[views.PathRoot](httptest.NewRequest(http.MethodGet, views.PathRoot, nil), s)
	assert.Equal(t, Redirect{Location: views.PathIndex}, resp)

	assert.Equal(t, state.History{place.FrontDoor}, s.History)
}

func TestPlaces_WindowRecordsThirdFloor(t *testing.T) {
	s := startedSession(place.FrontDoor, place.SecondFloor)
	resp := Places{}.Routes()[views.PathWindow](httptest.NewRequest(http.MethodGet, views.PathWindow, nil), s)

	assert.Equal(t, place.ThirdFloor, s.CurrentPlace())
	assert.Contains(t, renderBody(t, resp), `data-place="thirdfloor"`)
}

func renderBody(t *testing.T, resp Response) string {
	t.Helper()
	require.NotNil(t, resp)
	rr := httptest.NewRecorder()
	require.NoError(t, resp.Render(rr, httptest.NewRequest(http.MethodGet, "/", nil)))
	return rr.Body.String()
}
