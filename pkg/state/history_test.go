package state

import (
	"testing"

	"github.com/jwebster45206/fallhouse/pkg/place"
)

func TestHistory_Queries(t *testing.T) {
	tests := []struct {
		name            string
		history         History
		expectedCurrent place.Place
		expectedLast    place.Place
	}{
		{
			name:            "empty",
			history:         History{},
			expectedCurrent: place.None,
			expectedLast:    place.None,
		},
		{
			name:            "nil",
			history:         nil,
			expectedCurrent: place.None,
			expectedLast:    place.None,
		},
		{
			name:            "single visit",
			history:         History{place.FrontDoor},
			expectedCurrent: place.FrontDoor,
			expectedLast:    place.None,
		},
		{
			name:            "two visits",
			history:         History{place.FrontDoor, place.SecondFloor},
			expectedCurrent: place.SecondFloor,
			expectedLast:    place.FrontDoor,
		},
		{
			name:            "only the tail matters",
			history:         History{place.FrontDoor, place.FirstFloor, place.SecondFloor, place.ThirdFloor},
			expectedCurrent: place.ThirdFloor,
			expectedLast:    place.SecondFloor,
		},
		{
			name:            "revisit",
			history:         History{place.FirstFloor, place.FirstFloor},
			expectedCurrent: place.FirstFloor,
			expectedLast:    place.FirstFloor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.history.CurrentPlace(); got != tt.expectedCurrent {
				t.Errorf("CurrentPlace() = %v, want %v", got, tt.expectedCurrent)
			}
			if got := tt.history.LastPlace(); got != tt.expectedLast {
				t.Errorf("LastPlace() = %v, want %v", got, tt.expectedLast)
			}
		})
	}
}

func TestHistory_Strings(t *testing.T) {
	h := History{place.FrontDoor, place.ThirdFloor}
	got := h.Strings()
	if len(got) != 2 || got[0] != "frontdoor" || got[1] != "thirdfloor" {
		t.Errorf("unexpected identifiers: %v", got)
	}

	if got := (History{}).Strings(); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
