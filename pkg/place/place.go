package place

import "fmt"

// Place is a navigable location in the house. The zero value, None, stands for
// "no place" and is what history queries return when there is nothing to report.
type Place int

const (
	None Place = iota
	FrontDoor
	FirstFloor
	SecondFloor
	ThirdFloor
)

// Identifiers are what gets written to session storage. They must stay stable
// across releases or existing sessions will reset on their next request.
var identifiers = map[Place]string{
	None:        "none",
	FrontDoor:   "frontdoor",
	FirstFloor:  "firstfloor",
	SecondFloor: "secondfloor",
	ThirdFloor:  "thirdfloor",
}

var byIdentifier = func() map[string]Place {
	m := make(map[string]Place, len(identifiers))
	for p, id := range identifiers {
		m[id] = p
	}
	return m
}()

// All returns the navigable places in story order. None is not included.
func All() []Place {
	return []Place{FrontDoor, FirstFloor, SecondFloor, ThirdFloor}
}

func (p Place) String() string {
	if id, ok := identifiers[p]; ok {
		return id
	}
	return fmt.Sprintf("place(%d)", int(p))
}

// Valid reports whether p is one of the declared places, None included.
func (p Place) Valid() bool {
	_, ok := identifiers[p]
	return ok
}

// Parse converts a stored identifier back into a Place.
func Parse(s string) (Place, error) {
	p, ok := byIdentifier[s]
	if !ok {
		return None, fmt.Errorf("unknown place %q", s)
	}
	return p, nil
}

func (p Place) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid place %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Place) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
