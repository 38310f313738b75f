package readview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const iterTestCase = `<html><head></head><body><div id="a"><p id="b">x</p><p id="c">y</p></div><span id="d">z</span></body></html>`

func visitOrder(root *html.Node) []string {
	var order []string
	last := skipDescendants(root)
	for n := followingNode(root); n != last; n = followingNode(n) {
		if n.Type == html.ElementNode {
			order = append(order, n.Data+"#"+attr(n, "id"))
		}
	}
	return order
}

func TestFollowingNodeOrder(t *testing.T) {
	doc := parseDoc(t, iterTestCase)
	root := rootElement(doc)
	assert.Equal(t,
		[]string{"head#", "body#", "div#a", "p#b", "p#c", "span#d"},
		visitOrder(root))
}

func TestPreviousNodeMirrorsFollowing(t *testing.T) {
	doc := parseDoc(t, iterTestCase)
	root := rootElement(doc)

	var forward []*html.Node
	for n := followingNode(root); n != nil; n = followingNode(n) {
		forward = append(forward, n)
	}

	var backward []*html.Node
	for n := lastNode(root); n != root; n = previousNode(n) {
		backward = append(backward, n)
	}

	require.Equal(t, len(forward), len(backward))
	for i, n := range backward {
		assert.Same(t, forward[len(forward)-1-i], n)
	}
}

func TestRemoveDescendantsIfContinuesPastRemoved(t *testing.T) {
	doc := parseDoc(t, iterTestCase)
	root := rootElement(doc)

	var seen []string
	removeDescendantsIf(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			seen = append(seen, n.Data)
		}
		return nodeHasTag(n, "div")
	})

	// Descendants of the removed div are never visited.
	assert.Equal(t, []string{"head", "body", "div", "span"}, seen)
	assert.Nil(t, firstDescendantWithTag(root, "p"))
	assert.NotNil(t, firstDescendantWithTag(root, "span"))
}

func TestBwRemoveCleansChildrenBeforeParents(t *testing.T) {
	doc := parseDoc(t, `<html><body><div id="outer"><div id="inner"><a href="/x">all link text here</a></div></div></body></html>`)
	root := rootElement(doc)
	body := getBody(root)

	// Remove link-only and empty divs. Walking backwards, the inner div is
	// checked and removed before the outer one is evaluated.
	var checked []string
	bwRemoveDescendantsIf(body, func(n *html.Node) bool {
		if nodeHasTag(n, "div") {
			checked = append(checked, attr(n, "id"))
		}
		return nodeHasTag(n, "div") &&
			(linkDensity(n) > 0.9 || textContentLength(n) == 0)
	})
	assert.Equal(t, []string{"inner", "outer"}, checked)
	assert.Nil(t, firstDescendantWithTag(root, "a"))
	assert.Nil(t, firstDescendantWithTag(root, "div"))
}

func TestChangeDescendantsVisitsReplacementOnce(t *testing.T) {
	doc := parseDoc(t, iterTestCase)
	root := rootElement(doc)

	visits := 0
	changeDescendants(root, func(n *html.Node) *html.Node {
		visits++
		if nodeHasTag(n, "p") {
			repl := newElement("h4")
			for n.FirstChild != nil {
				appendChild(repl, n.FirstChild)
			}
			replaceNode(n, repl)
			return repl
		}
		return n
	})

	assert.Nil(t, firstDescendantWithTag(root, "p"))
	assert.Len(t, querySelectorAll(doc, "h4"), 2)
	// html itself is not included; replacement nodes are visited once.
	assert.Equal(t, 9, visits)
}

func TestCountAndTotalHelpers(t *testing.T) {
	doc := parseDoc(t, iterTestCase)
	root := rootElement(doc)

	assert.Equal(t, 2, tagCount(root, "p"))
	assert.True(t, hasSuchDescendant(root, func(n *html.Node) bool { return nodeHasTag(n, "span") }))
	assert.False(t, forallDescendants(root, func(n *html.Node) bool { return n.Type == html.ElementNode }))

	total := totalForDescendants(root, func(n *html.Node) float64 {
		if n.Type == html.TextNode {
			return float64(len(n.Data))
		}
		return 0
	})
	assert.Equal(t, 3.0, total)
}

func TestNextAndPrevElement(t *testing.T) {
	doc := parseDoc(t, `<html><body><p id="a">x</p> <p id="b">y</p>text<p id="c">z</p></body></html>`)
	a := querySelectorAll(doc, "#a")[0]
	b := querySelectorAll(doc, "#b")[0]

	next := nextElement(a)
	require.NotNil(t, next)
	assert.Equal(t, "b", attr(next, "id"))

	// A nonempty text node blocks the search.
	assert.Nil(t, nextElement(b))

	prev := prevElement(b)
	require.NotNil(t, prev)
	assert.Equal(t, "a", attr(prev, "id"))
}
