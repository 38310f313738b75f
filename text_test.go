package readview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseDoc(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestNormalizeText(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"a  b\t\nc", "a b c"},
		{"a\u00a0b", "a b"},
		{"a \u00a0\u00a0 b", "a b"},
		{"a\u200bb", "ab"},
		{"a \u200b b", "a b"},
		{"  leading and trailing  ", " leading and trailing "},
		{"", ""},
	}

	for _, tc := range testCases {
		got := normalizeText(tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		// Normalizing twice yields the same result as normalizing once.
		assert.Equal(t, got, normalizeText(got), "input %q not idempotent", tc.input)
	}
}

func TestUnescapeEntities(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"a &amp; b", "a & b"},
		{"&lt;p&gt;", "<p>"},
		{"&quot;hi&quot;", `"hi"`},
		{"&apos;hi&apos;", "'hi'"},
		{"&#167;", "§"},
		{"&#65;&#66;", "AB"},
		{"no entities", "no entities"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, unescapeEntities(tc.input), "input %q", tc.input)
	}
}

func TestUnescapeComposedWithEscapeIsNoop(t *testing.T) {
	for _, s := range []string{
		"plain ascii text",
		`<a href="x">it's &fun;</a>`,
		"1 < 2 && 3 > 2",
	} {
		assert.Equal(t, s, unescapeEntities(escapeEntities(s)))
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 3, wordCount("one two three", false))
	assert.Equal(t, 1, wordCount("one|two/three", false))
	assert.Equal(t, 3, wordCount("one|two/three", true))
	assert.Equal(t, 5, wordCount("The Real Title | Example Site", true))
	assert.Equal(t, 0, wordCount("   ", false))
}

func TestCharCount(t *testing.T) {
	assert.Equal(t, 2, charCount("a,b,c", ','))
	assert.Equal(t, 0, charCount("", ','))
}

func TestFindLastSeparator(t *testing.T) {
	assert.Equal(t, -1, findLastSeparator("no separators here"))
	assert.Equal(t, -1, findLastSeparator("glued|pipe"))
	s := "The Real Title | Example Site"
	idx := findLastSeparator(s)
	require.Positive(t, idx)
	assert.Equal(t, "The Real Title", s[:idx-1])
	// The rightmost of several separators wins.
	s = "a - b - c"
	assert.Equal(t, strings.LastIndex(s, "-"), findLastSeparator(s))
}

func TestTextContentLength(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>  hello   world  </p></body></html>`)
	p := firstDescendantWithTag(rootElement(doc), "p")
	require.NotNil(t, p)
	// Trimmed but not collapsed.
	assert.Equal(t, len("hello   world"), textContentLength(p))
	// Collapsed for the normalized variant.
	assert.Equal(t, len("hello world"), textNormalizedContentLength(p))
}

func TestLinkDensity(t *testing.T) {
	doc := parseDoc(t, `<html><body><div id="d"><a href="/x">0123456789</a>0123456789</div></body></html>`)
	div := firstDescendantWithTag(rootElement(doc), "div")
	require.NotNil(t, div)
	assert.InDelta(t, 0.5, linkDensity(div), 0.001)

	empty := newElement("div")
	assert.Zero(t, linkDensity(empty))
}

func TestIsPhrasingContent(t *testing.T) {
	doc := parseDoc(t, `<html><body><span>x</span><div>y</div><a id="ok"><em>z</em></a></body></html>`)
	root := rootElement(doc)

	assert.True(t, isPhrasingContent(firstDescendantWithTag(root, "span")))
	assert.False(t, isPhrasingContent(firstDescendantWithTag(root, "div")))
	assert.True(t, isPhrasingContent(firstDescendantWithTag(root, "a")))

	// Links are phrasing content only if all their descendants are.
	link := newElement("a")
	div := newElement("div")
	div.AppendChild(newTextNode("w"))
	link.AppendChild(div)
	assert.False(t, isPhrasingContent(link))
}

func TestHasSingleTagInside(t *testing.T) {
	doc := parseDoc(t, `<html><body><div id="one"> <p>x</p> </div><div id="two"><p>x</p><p>y</p></div><div id="three">text<p>x</p></div></body></html>`)
	for _, div := range querySelectorAll(doc, "div") {
		inner := hasSingleTagInside(div, "p")
		if attr(div, "id") == "one" {
			assert.NotNil(t, inner)
		} else {
			assert.Nil(t, inner, "div %s", attr(div, "id"))
		}
	}
}
