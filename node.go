package readview

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Per-node annotation, kept outside the tree in a map owned by the
// extraction session. The parser's nodes stay untouched.
type nodeInfo struct {
	flags uint8
	score float64
}

const (
	nodeToScore     = 1 << 0
	nodeInitialized = 1 << 1
	nodeCandidate   = 1 << 2
	nodeDataTable   = 1 << 3
)

func (e *extractor) nodeInfo(n *html.Node) *nodeInfo {
	ni := e.info[n]
	if ni == nil {
		ni = &nodeInfo{}
		e.info[n] = ni
	}
	return ni
}

func (e *extractor) loadScore(n *html.Node) float64 {
	if ni := e.info[n]; ni != nil {
		return ni.score
	}
	return 0
}

func (e *extractor) saveScore(n *html.Node, score float64) {
	e.nodeInfo(n).score = score
}

func (e *extractor) addToScore(n *html.Node, delta float64) {
	e.nodeInfo(n).score += delta
}

func (e *extractor) markToScore(n *html.Node)     { e.nodeInfo(n).flags |= nodeToScore }
func (e *extractor) markInitialized(n *html.Node) { e.nodeInfo(n).flags |= nodeInitialized }
func (e *extractor) markCandidate(n *html.Node)   { e.nodeInfo(n).flags |= nodeCandidate }
func (e *extractor) markDataTable(n *html.Node)   { e.nodeInfo(n).flags |= nodeDataTable }

func (e *extractor) hasNodeFlag(n *html.Node, flag uint8) bool {
	ni := e.info[n]
	return ni != nil && ni.flags&flag != 0
}

func (e *extractor) isToScore(n *html.Node) bool     { return e.hasNodeFlag(n, nodeToScore) }
func (e *extractor) isInitialized(n *html.Node) bool { return e.hasNodeFlag(n, nodeInitialized) }
func (e *extractor) isCandidate(n *html.Node) bool   { return e.hasNodeFlag(n, nodeCandidate) }
func (e *extractor) isDataTable(n *html.Node) bool   { return e.hasNodeFlag(n, nodeDataTable) }

// nodeHasTag reports whether n is an element with one of the given
// (lowercase) tag names.
func nodeHasTag(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, tag := range tags {
		if strings.EqualFold(n.Data, tag) {
			return true
		}
	}
	return false
}

// hasAncestorTag returns the closest ancestor with the given tag, including
// the node itself, or nil if none.
func hasAncestorTag(n *html.Node, tag string) *html.Node {
	for ; n != nil; n = n.Parent {
		if nodeHasTag(n, tag) {
			return n
		}
	}
	return nil
}

func isAncestorOf(ancestor, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// attr looks up an attribute value by case-insensitive name. Returns ""
// for non-elements and missing attributes.
func attr(n *html.Node, name string) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

func attrEquals(n *html.Node, name, value string) bool {
	return hasAttr(n, name) && attr(n, name) == value
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func newElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

func newTextNode(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// renameNode changes an element's tag in place; children and attributes are
// kept.
func renameNode(n *html.Node, tag string) {
	n.Data = strings.ToLower(tag)
	n.DataAtom = atom.Lookup([]byte(n.Data))
}

func unlink(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// appendChild moves n to the end of parent's children, unlinking it from its
// current position first.
func appendChild(parent, n *html.Node) {
	unlink(n)
	parent.AppendChild(n)
}

// replaceNode puts repl in the tree position of n; n is unlinked.
func replaceNode(n, repl *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	unlink(repl)
	parent.InsertBefore(repl, n)
	parent.RemoveChild(n)
}

// rootElement returns the document's root element. It accepts either a
// document node or the root element itself.
func rootElement(doc *html.Node) *html.Node {
	if doc == nil {
		return nil
	}
	if doc.Type == html.ElementNode {
		return doc
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func getBody(root *html.Node) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if nodeHasTag(c, "body") {
			return c
		}
	}
	return nil
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func elementChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

// cloneTree deep-copies a node and its subtree. Annotations are not copied;
// they belong to the session, not the tree.
func cloneTree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneTree(c))
	}
	return clone
}

// isDisplayNone checks if a style attribute sets 'display' to 'none'. If
// 'display' is set twice only the first one is checked.
func isDisplayNone(style string) bool {
	style = strings.ToLower(style)
	i := strings.Index(style, "display")
	if i < 0 {
		return false
	}
	rest := style[i:]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return false
	}
	value := strings.TrimLeft(rest[colon+1:], " ")
	for j := 0; j < len(value); j++ {
		if value[j] == ';' || value[j] == ' ' {
			value = value[:j]
			break
		}
	}
	return strings.EqualFold(value, "none")
}

func isNodeVisible(n *html.Node) bool {
	// Have to deal with nodes without a style or class, like SVG and MathML.
	if style := attr(n, "style"); style != "" && isDisplayNone(style) {
		return false
	}
	if hasAttr(n, "hidden") {
		return false
	}
	if attr(n, "aria-hidden") == "true" {
		// The "fallback-image" exception keeps wikimedia math images visible.
		return strings.Contains(attr(n, "class"), "fallback-image")
	}
	return true
}

// nodeHasUnlikelyClassID considers only the class and id of the node: is it
// unlikely to be readable?
func nodeHasUnlikelyClassID(n *html.Node) bool {
	class, id := attr(n, "class"), attr(n, "id")
	if !unlikelyRe.MatchString(class) && !unlikelyRe.MatchString(id) {
		return false
	}
	return !candidateRe.MatchString(class) && !candidateRe.MatchString(id)
}

// classWeight grades an element by its class and id names. Contributes
// nothing while the weight-classes flag is cleared.
func (e *extractor) classWeight(n *html.Node) float64 {
	if !e.flagActive(flagWeightClasses) {
		return 0
	}

	weight := 0
	if class := attr(n, "class"); class != "" {
		if negativeRe.MatchString(class) {
			weight -= 25
		}
		if positiveRe.MatchString(class) {
			weight += 25
		}
	}
	if id := attr(n, "id"); id != "" {
		if negativeRe.MatchString(id) {
			weight -= 25
		}
		if positiveRe.MatchString(id) {
			weight += 25
		}
	}
	return float64(weight)
}
