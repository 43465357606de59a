package state

import (
	"fmt"

	"github.com/jwebster45206/fallhouse/pkg/place"
)

// Session is one visitor's game state. It is loaded by a session store at the
// start of a request, handed explicitly to the reset hook and the place
// handlers, and written back by the store when Dirty reports true.
type Session struct {
	History  History
	GameOver bool

	hasHistory bool
	persistent bool
	dirty      bool
}

// NewSession returns a session with no history at all, the shape a first
// request arrives with. The reset hook turns it into a playable session.
func NewSession() *Session {
	return &Session{}
}

// HasHistory reports whether the history field exists. An empty history
// still counts as present.
func (s *Session) HasHistory() bool {
	return s.hasHistory
}

// Reset clears the session to the start of the story and marks it persistent.
func (s *Session) Reset() {
	s.History = History{}
	s.GameOver = false
	s.hasHistory = true
	s.persistent = true
	s.dirty = true
}

// Visit appends p to the history.
func (s *Session) Visit(p place.Place) {
	s.History = append(s.History, p)
	s.hasHistory = true
	s.dirty = true
}

// EndGame flags the session so the next request starts over.
func (s *Session) EndGame() {
	s.GameOver = true
	s.dirty = true
}

func (s *Session) CurrentPlace() place.Place { return s.History.CurrentPlace() }
func (s *Session) LastPlace() place.Place    { return s.History.LastPlace() }

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool { return s.dirty }

// Persistent reports whether the session should outlive the browser session.
func (s *Session) Persistent() bool { return s.persistent }

// Record is the serialized form of a Session. History is nil when the session
// never had one, which is distinct from an empty list.
type Record struct {
	History   []string `json:"history"`
	GameOver  bool     `json:"gameover"`
	Permanent bool     `json:"permanent,omitempty"`
}

// Record converts the session to its storage form.
func (s *Session) Record() Record {
	rec := Record{
		GameOver:  s.GameOver,
		Permanent: s.persistent,
	}
	if s.hasHistory {
		rec.History = s.History.Strings()
	}
	return rec
}

// FromRecord rebuilds a session from storage. A nil record yields a fresh
// session. A record naming an unknown place also yields a fresh session, along
// with an error describing what was wrong so the caller can log it.
func FromRecord(rec *Record) (*Session, error) {
	if rec == nil {
		return NewSession(), nil
	}

	s := &Session{
		GameOver:   rec.GameOver,
		persistent: rec.Permanent,
	}
	if rec.History == nil {
		return s, nil
	}

	history := make(History, 0, len(rec.History))
	for i, id := range rec.History {
		p, err := place.Parse(id)
		if err != nil || p == place.None {
			return NewSession(), fmt.Errorf("history entry %d: invalid place %q", i, id)
		}
		history = append(history, p)
	}
	s.History = history
	s.hasHistory = true
	return s, nil
}
