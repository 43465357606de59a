package handlers

import (
	"net/http"

	"github.com/jwebster45206/fallhouse/internal/views"
	"github.com/jwebster45206/fallhouse/pkg/place"
	"github.com/jwebster45206/fallhouse/pkg/state"
)

// PlaceFunc handles one page of the game. The session is passed explicitly;
// handlers mutate it and the caller persists it.
type PlaceFunc func(r *http.Request, s *state.Session) Response

// Record wraps fn so that p is appended to the visitor's history before fn
// runs, on every call.
func Record(p place.Place, fn PlaceFunc) PlaceFunc {
	return func(r *http.Request, s *state.Session) Response {
		s.Visit(p)
		return fn(r, s)
	}
}

// entryPaths may be requested with an empty history.
var entryPaths = map[string]bool{
	views.PathRoot:      true,
	views.PathIndex:     true,
	views.PathFrontDoor: true,
}

// ResetHook runs before every page request. It returns a redirect when the
// request must not reach its handler, or nil to let it through.
//
// A session without history, or one whose game is over, is reset and sent to
// the index. An empty history may only enter through the entry paths;
// anything else is sent to the front door.
func ResetHook(path string, s *state.Session) Response {
	if !s.HasHistory() || s.GameOver {
		s.Reset()
		return Redirect{Location: views.PathIndex}
	}
	if len(s.History) == 0 && !entryPaths[path] {
		return Redirect{Location: views.PathFrontDoor}
	}
	return nil
}

// Places holds the page handlers of the house.
type Places struct {
	// ClimbBranch enables the climbed variant of the second floor.
	ClimbBranch bool
}

// Routes maps URL paths to their handlers. Index and root are not recorded
// in history.
func (p Places) Routes() map[string]PlaceFunc {
	return map[string]PlaceFunc{
		views.PathRoot:        p.Root,
		views.PathIndex:       p.Index,
		views.PathFrontDoor:   Record(place.FrontDoor, p.FrontDoor),
		views.PathFirstFloor:  Record(place.FirstFloor, p.FirstFloor),
		views.PathSecondFloor: Record(place.SecondFloor, p.SecondFloor),
		views.PathWindow:      Record(place.ThirdFloor, p.Window),
	}
}

func (p Places) Root(r *http.Request, s *state.Session) Response {
	return Redirect{Location: views.PathIndex}
}

func (p Places) Index(r *http.Request, s *state.Session) Response {
	return Page{views.Index()}
}

// FrontDoor ends the game when the visitor came straight down from the second floor.
func (p Places) FrontDoor(r *http.Request, s *state.Session) Response {
	if s.LastPlace() == place.SecondFloor {
		s.EndGame()
		return Page{views.FellOff()}
	}
	return Page{views.FrontDoor()}
}

func (p Places) FirstFloor(r *http.Request, s *state.Session) Response {
	return Page{views.FirstFloor()}
}

func (p Places) SecondFloor(r *http.Request, s *state.Session) Response {
	if p.ClimbBranch && s.LastPlace() == place.FrontDoor {
		return Page{views.Climbed()}
	}
	return Page{views.SecondFloor()}
}

func (p Places) Window(r *http.Request, s *state.Session) Response {
	return Page{views.Window()}
}
