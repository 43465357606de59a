package state

import "github.com/jwebster45206/fallhouse/pkg/place"

// History is the ordered list of places entered during a session, oldest first.
// Consecutive duplicates are legal: revisiting a place appends it again.
type History []place.Place

// CurrentPlace returns the most recently entered place, or place.None.
func (h History) CurrentPlace() place.Place {
	if len(h) == 0 {
		return place.None
	}
	return h[len(h)-1]
}

// LastPlace returns the place entered before the current one, or place.None
// when fewer than two places have been visited.
func (h History) LastPlace() place.Place {
	if len(h) < 2 {
		return place.None
	}
	return h[len(h)-2]
}

// Strings returns the storage identifiers of the history in order.
func (h History) Strings() []string {
	out := make([]string, len(h))
	for i, p := range h {
		out[i] = p.String()
	}
	return out
}
