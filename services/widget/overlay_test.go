package widget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverlayHTMLListsLinks(t *testing.T) {
	assert := require.New(t)
	overlay := &Overlay{Seq: 1, Query: "hello", Items: []OverlayItem{
		{Title: "Hello World", URL: "/posts/hello-world/"},
		{Title: "Hello Again", URL: "/posts/hello-again/"},
	}}

	markup, err := overlay.HTML()
	assert.NoError(err)
	assert.Contains(markup, "<dialog open>")
	assert.Contains(markup, `Search Results for "hello"`)
	assert.Contains(markup, `<li><a href="/posts/hello-world/"><strong>Hello World</strong></a></li>`)
	assert.Contains(markup, `<li><a href="/posts/hello-again/"><strong>Hello Again</strong></a></li>`)
	assert.Contains(markup, `aria-label="Close"`)
	assert.NotContains(markup, noResultsMessage)
	assert.Less(strings.Index(markup, "Hello World"), strings.Index(markup, "Hello Again"))
}

func TestOverlayHTMLEscapesUserInput(t *testing.T) {
	assert := require.New(t)
	overlay := &Overlay{Query: `<script>alert(1)</script>`, Items: []OverlayItem{
		{Title: `<b>bold</b>`, URL: `javascript:alert(1)`},
	}}

	markup, err := overlay.HTML()
	assert.NoError(err)
	assert.NotContains(markup, "<script>")
	assert.NotContains(markup, "<b>bold</b>")
	assert.NotContains(markup, `href="javascript:`)
}

func TestOverlayHTMLWithoutResults(t *testing.T) {
	assert := require.New(t)

	markup, err := (&Overlay{Query: "nothing"}).HTML()
	assert.NoError(err)
	assert.Contains(markup, "<p>"+noResultsMessage+"</p>")
	assert.NotContains(markup, "search-results-list")
}

func TestOverlayText(t *testing.T) {
	assert := require.New(t)

	text := (&Overlay{Query: "hello", Items: []OverlayItem{
		{Title: "Hello World", URL: "/posts/hello-world/"},
		{Title: "About", URL: "/about/"},
	}}).Text()
	assert.Equal("Search Results for \"hello\"\n  1. Hello World  /posts/hello-world/\n  2. About  /about/\n", text)

	assert.Equal("Search Results for \"zzz\"\n  No results found\n", (&Overlay{Query: "zzz"}).Text())
}
