// Package views renders the pages of the house. Pages are templ components
// built on a shared Layout; run go generate after editing a .templ file.
package views

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.943 generate

const siteName = "The House on the Hill"

// URL paths of the pages. The window page belongs to the third floor.
const (
	PathRoot        = "/"
	PathIndex       = "/index.htm"
	PathFrontDoor   = "/frontdoor.htm"
	PathFirstFloor  = "/firstfloor.htm"
	PathSecondFloor = "/secondfloor.htm"
	PathWindow      = "/window.htm"
)

// Link is a navigation choice shown at the bottom of a page.
type Link struct {
	Href  string
	Label string
}

// Page is the frame of one rendered page. The story text is passed to Layout
// as children.
type Page struct {
	// Place is the storage identifier of the place shown, empty for the index.
	Place string
	Title string
	Links []Link
	// Ending marks a terminal page.
	Ending bool
}

func pageTitle(title string) string {
	if title == "" || title == siteName {
		return siteName
	}
	return title + " | " + siteName
}

var (
	indexPage = Page{
		Title: siteName,
		Links: []Link{{PathFrontDoor, "Walk up to the front door"}},
	}
	frontDoorPage = Page{
		Place: "frontdoor",
		Title: "The Front Door",
		Links: []Link{
			{PathFirstFloor, "Step inside"},
			{PathSecondFloor, "Climb the ivy"},
		},
	}
	fellOffPage = Page{
		Place:  "frontdoor",
		Title:  "You Fell",
		Links:  []Link{{PathIndex, "Start over"}},
		Ending: true,
	}
	firstFloorPage = Page{
		Place: "firstfloor",
		Title: "The First Floor",
		Links: []Link{
			{PathSecondFloor, "Take the stairs up"},
			{PathFrontDoor, "Go back out the front door"},
		},
	}
	// Shared by the stairs and the ivy arrival.
	secondFloorPage = Page{
		Place: "secondfloor",
		Title: "The Second Floor",
		Links: []Link{
			{PathWindow, "Climb the ladder to the window"},
			{PathFirstFloor, "Take the stairs down"},
			{PathFrontDoor, "Climb back down the ivy"},
		},
	}
	windowPage = Page{
		Place: "thirdfloor",
		Title: "The Window",
		Links: []Link{{PathSecondFloor, "Climb back down the ladder"}},
	}
)
