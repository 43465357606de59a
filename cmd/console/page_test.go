package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	doc := `<!DOCTYPE html>
<html lang="en">
<head><title>You Fell | The House on the Hill</title></head>
<body class="place ending" data-place="frontdoor">
<main>
<h1>You Fell</h1>
<p>The vines
   tear loose.</p>
<p></p>
<p>Your adventure &amp; ends here.</p>
<nav><ul>
<li><a href="/index.htm">Start over</a></li>
<li><a>no href</a></li>
</ul></nav>
</main>
</body>
</html>`

	page, err := parsePage(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "You Fell", page.Title)
	assert.Equal(t, "frontdoor", page.Place)
	assert.True(t, page.Ending)
	assert.Equal(t, []string{"The vines tear loose.", "Your adventure & ends here."}, page.Paragraphs)
	assert.Equal(t, []Link{{Href: "/index.htm", Label: "Start over"}}, page.Links)
}

func TestParsePage_IndexHasNoPlace(t *testing.T) {
	page, err := parsePage(strings.NewReader(`<body class="place"><h1>Index</h1><a href="/frontdoor.htm">Go</a></body>`))
	require.NoError(t, err)

	assert.Empty(t, page.Place)
	assert.False(t, page.Ending)
	assert.Len(t, page.Links, 1)
}
