/*
 * Copyright (c) 2010 Arc90 Inc
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
 * Document preparation: stripping scripts, styles and comments, rescuing
 * noscript images, and taming terrible markup before extraction. The
 * heuristics follow Arc90's readability.js (via Mozilla's reader view).
 */

package readview

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
)

// removeRootSiblings drops stray siblings of the root element (doctype
// declarations, comments outside the markup) so traversal stays inside it.
func removeRootSiblings(root *html.Node) {
	for sib := root.NextSibling; sib != nil; sib = root.NextSibling {
		unlink(sib)
	}
	for sib := root.PrevSibling; sib != nil; sib = root.PrevSibling {
		unlink(sib)
	}
}

// setBaseURLFromDoc overrides the configured base URL when the document
// itself supplies a <base href>.
func (e *extractor) setBaseURLFromDoc(root *html.Node) {
	base := firstDescendantWithTag(root, "base")
	href := attr(base, "href")
	if href == "" {
		return
	}
	e.opts.baseURL = e.toAbsoluteURL(href)
	e.opts.urlOverride = true
}

func isComment(n *html.Node) bool {
	return n.Type == html.CommentNode
}

// isImagePlaceholder matches an img with no source and no attribute that
// might carry one.
func isImagePlaceholder(n *html.Node) bool {
	if !nodeHasTag(n, "img") {
		return false
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "src", "srcset", "data-src", "data-srcset":
			return false
		}
		if imgextRe.MatchString(a.Val) {
			return false
		}
	}
	return true
}

// getSingleImage returns the image if the node is one, or if it contains
// exactly one image through a chain of single element children.
func getSingleImage(n *html.Node) *html.Node {
	if nodeHasTag(n, "img") {
		return n
	}
	for n != nil {
		var elementChild *html.Node
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode {
				if elementChild != nil {
					return nil
				}
				elementChild = child
			} else if textNormalizedContentLength(child) > 0 {
				return nil
			}
		}
		if nodeHasTag(elementChild, "img") {
			return elementChild
		}
		n = elementChild
	}
	return nil
}

// isImageAttr: could this attribute contain an image?
func isImageAttr(name, value string) bool {
	if value == "" {
		return false
	}
	if strings.EqualFold(name, "src") || strings.EqualFold(name, "srcset") {
		return true
	}
	return imgextRe.MatchString(value)
}

// copyImageAttrs merges the image-bearing attributes of src into dest,
// preserving existing destination values and backing up conflicts under a
// data-old- prefix.
func copyImageAttrs(dest, src *html.Node) {
	for _, a := range src.Attr {
		if !isImageAttr(a.Key, a.Val) {
			continue
		}
		if !hasAttr(dest, a.Key) {
			setAttr(dest, a.Key, a.Val)
			continue
		}
		if attr(dest, a.Key) == a.Val {
			continue
		}
		setAttr(dest, "data-old-"+a.Key, a.Val)
	}
}

// expandNoscript re-parses raw noscript text into real nodes. Parsers with
// scripting enabled treat noscript content as text, which would hide the
// image from the check below.
func expandNoscript(n *html.Node) {
	c := n.FirstChild
	if c == nil || c.NextSibling != nil || c.Type != html.TextNode || !strings.Contains(c.Data, "<") {
		return
	}
	parsed, err := html.ParseFragment(strings.NewReader(c.Data), newElement("div"))
	if err != nil {
		return
	}
	n.RemoveChild(c)
	for _, node := range parsed {
		n.AppendChild(node)
	}
}

// unwrapNoscriptImages finds every noscript whose content is a single
// image and uses it to replace a preceding single-image sibling, which
// improves image quality on sites like Medium. Placeholder images are
// dropped first so they don't shadow the noscript versions.
func unwrapNoscriptImages(root *html.Node) {
	removeDescendantsIf(root, isImagePlaceholder)

	last := skipDescendants(root)
	for n := followingNode(root); n != last; n = followingNode(n) {
		if !nodeHasTag(n, "noscript") {
			continue
		}
		expandNoscript(n)
		newImg := getSingleImage(n)
		if newImg == nil {
			continue
		}
		prev := prevElement(n)
		if prev == nil {
			continue
		}
		oldImg := getSingleImage(prev)
		if oldImg == nil {
			continue
		}
		copyImageAttrs(newImg, oldImg)
		replaceNode(prev, newImg)
	}
}

// isScriptOrNoscript matches script and noscript nodes; script sources and
// contents are cleared first as a paranoia measure.
func isScriptOrNoscript(n *html.Node) bool {
	if nodeHasTag(n, "noscript") {
		return true
	}
	if nodeHasTag(n, "script") {
		removeAttr(n, "src")
		for n.FirstChild != nil {
			n.RemoveChild(n.FirstChild)
		}
		return true
	}
	return false
}

func isWhitespaceNode(n *html.Node) bool {
	if n.Type == html.TextNode && textContentLength(n) == 0 {
		return true
	}
	return nodeHasTag(n, "br")
}

func pruneTrailingWhitespace(n *html.Node) {
	for n.LastChild != nil && isWhitespaceNode(n.LastChild) {
		n.RemoveChild(n.LastChild)
	}
}

// isDoubleBr: is this node the first br in a br-br sequence?
func isDoubleBr(n *html.Node) bool {
	return nodeHasTag(n, "br") && nodeHasTag(nextElement(n), "br")
}

// replaceBrRun collapses a run of two or more successive br elements
// (ignoring whitespace in between) into a single p, adopting the following
// phrasing siblings as its children until another br run is met.
func replaceBrRun(br *html.Node) {
	replaced := false
	for next := nextElement(br); nodeHasTag(next, "br"); next = nextElement(br) {
		replaced = true
		unlink(next)
	}
	if !replaced {
		return
	}

	renameNode(br, "p")
	for next := br.NextSibling; next != nil; next = br.NextSibling {
		if isDoubleBr(next) || !isPhrasingContent(next) {
			break
		}
		appendChild(br, next)
	}
	pruneTrailingWhitespace(br)

	if nodeHasTag(br.Parent, "p") {
		renameNode(br.Parent, "div")
	}
}

// prepDocument prepares the document for the grabber: styles removed, font
// renamed to span, and br runs coalesced into paragraphs.
func (e *extractor) prepDocument(root *html.Node) {
	slog.Debug("preparing document")

	last := skipDescendants(root)
	n := followingNode(root)
	for n != last {
		if nodeHasTag(n, "style") {
			n = removeAndGetFollowing(n)
			continue
		}
		if nodeHasTag(n, "font") {
			renameNode(n, "span")
		}
		n = followingNode(n)
	}

	for n := followingNode(root); n != last; n = followingNode(n) {
		if nodeHasTag(n, "br") {
			replaceBrRun(n)
		}
	}
}
