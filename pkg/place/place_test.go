package place

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlace_String(t *testing.T) {
	tests := []struct {
		place    Place
		expected string
	}{
		{None, "none"},
		{FrontDoor, "frontdoor"},
		{FirstFloor, "firstfloor"},
		{SecondFloor, "secondfloor"},
		{ThirdFloor, "thirdfloor"},
		{Place(42), "place(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.place.String())
		})
	}
}

func TestParse(t *testing.T) {
	for _, p := range append(All(), None) {
		parsed, err := Parse(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := Parse("attic")
	assert.Error(t, err)

	// The window page is registered under its own identifier, not its path.
	_, err = Parse("window")
	assert.Error(t, err)
}

func TestPlace_JSON(t *testing.T) {
	data, err := json.Marshal([]Place{FrontDoor, ThirdFloor})
	require.NoError(t, err)
	assert.JSONEq(t, `["frontdoor","thirdfloor"]`, string(data))

	var decoded []Place
	require.NoError(t, json.Unmarshal([]byte(`["secondfloor","frontdoor"]`), &decoded))
	assert.Equal(t, []Place{SecondFloor, FrontDoor}, decoded)

	assert.Error(t, json.Unmarshal([]byte(`["basement"]`), &decoded))

	_, err = json.Marshal(Place(99))
	assert.Error(t, err)
}

func TestAll_ExcludesNone(t *testing.T) {
	all := All()
	assert.Len(t, all, 4)
	assert.NotContains(t, all, None)
}
