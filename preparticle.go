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
 * Article preparation: clean the candidate article for display. Inline
 * styles, iframes, forms, share widgets and other junk are stripped; lazy
 * images are fixed; data tables are protected from the conditional passes.
 */

package readview

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var presentationalAttrs = []string{
	"align", "background", "bgcolor", "border", "cellpadding", "cellspacing",
	"frame", "hspace", "rules", "style", "valign", "vspace",
}

var deprecatedSizeElems = []string{"table", "th", "td", "hr", "pre"}

// cleanStyles removes presentational attributes from the whole subtree,
// leaving svg subtrees alone.
func cleanStyles(article *html.Node) {
	last := skipDescendants(article)
	curr := article
	for curr != last {
		if curr.Type != html.ElementNode || nodeHasTag(curr, "svg") {
			curr = skipDescendants(curr)
			continue
		}
		for _, name := range presentationalAttrs {
			removeAttr(curr, name)
		}
		if nodeHasTag(curr, deprecatedSizeElems...) {
			removeAttr(curr, "width")
			removeAttr(curr, "height")
		}
		curr = followingNode(curr)
	}
}

// attrNum extracts a reasonable positive number from the attribute; if
// unable, returns 0. Insane values are harmless.
func attrNum(n *html.Node, name string) int {
	num, err := strconv.Atoi(strings.TrimSpace(attr(n, name)))
	if err != nil || num < 0 {
		return 0
	}
	return num
}

// tableSize sums rowspan and colspan attributes when present, one per row
// or cell otherwise. The colspan is read from the row, as reader view
// always has.
func tableSize(table *html.Node) (rows, columns int) {
	last := skipDescendants(table)
	curr := followingNode(table)
	for curr != last {
		if !nodeHasTag(curr, "tr") {
			curr = followingNode(curr)
			continue
		}
		if rowspan := attrNum(curr, "rowspan"); rowspan > 0 {
			rows += rowspan
		} else {
			rows++
		}

		colsInRow := 0
		for child := curr.FirstChild; child != nil; child = child.NextSibling {
			if !nodeHasTag(child, "td") {
				continue
			}
			if colspan := attrNum(curr, "colspan"); colspan > 0 {
				colsInRow += colspan
			} else {
				colsInRow++
			}
		}
		columns = max(columns, colsInRow)

		curr = skipDescendants(curr)
	}
	return rows, columns
}

func isTableCaption(n *html.Node) bool {
	return nodeHasTag(n, "caption") && n.FirstChild != nil
}

func isTableDataTag(n *html.Node) bool {
	return nodeHasTag(n, "col", "colgroup", "tfoot", "thead", "th")
}

// markIfDataTable flags tables that look like they carry tabular data
// rather than page layout; their contents are exempt from conditional
// cleaning.
func (e *extractor) markIfDataTable(n *html.Node) *html.Node {
	if !nodeHasTag(n, "table") {
		return n
	}
	if attrEquals(n, "role", "presentation") || attrEquals(n, "datatable", "0") {
		return n
	}

	if hasAttr(n, "summary") ||
		hasSuchDescendant(n, isTableCaption) ||
		hasSuchDescendant(n, isTableDataTag) {
		e.markDataTable(n)
		return n
	}

	// Nested tables indicate a layout table.
	if hasSuchDescendant(n, func(d *html.Node) bool { return nodeHasTag(d, "table") }) {
		return n
	}

	rows, columns := tableSize(n)
	if rows >= 10 || columns > 4 || rows*columns > 10 {
		e.markDataTable(n)
	}
	return n
}

// imageSrcIsMeaningless spots tiny base64 placeholders: a short non-SVG
// data URL on an element whose other attributes look like they carry the
// real image.
func imageSrcIsMeaningless(img *html.Node) bool {
	src := attr(img, "src")
	if !b64DataURLRe.MatchString(src) {
		return false
	}
	// SVG can have a meaningful image in under 133 bytes.
	if strings.Contains(strings.ToLower(src), "image/svg+xml") {
		return false
	}

	hasOtherImageAttr := false
	for _, a := range img.Attr {
		if strings.EqualFold(a.Key, "src") {
			continue
		}
		if imgextRe.MatchString(a.Val) {
			hasOtherImageAttr = true
			break
		}
	}
	if !hasOtherImageAttr {
		return false
	}

	// An image under 100 bytes (133 after base64) is likely a placeholder.
	marker := strings.Index(strings.ToLower(src), "base64")
	if marker < 0 {
		return false
	}
	return len(src)-(marker+7) < 133
}

// isImageLazy: will this image only be loaded by javascript? Meaningless
// placeholder sources are dropped on the way.
func isImageLazy(img *html.Node) bool {
	if imageSrcIsMeaningless(img) {
		removeAttr(img, "src")
	}
	if !hasAttr(img, "src") && !hasAttr(img, "srcset") {
		return true
	}
	return strings.Contains(strings.ToLower(attr(img, "class")), "lazy")
}

func hasDescendantTag(n *html.Node, tags ...string) bool {
	return hasSuchDescendant(n, func(d *html.Node) bool {
		return nodeHasTag(d, tags...)
	})
}

// fixLazyImage copies image-looking attribute values into src or srcset so
// the image loads without javascript. A figure without an image descendant
// gets a child img created for it.
func fixLazyImage(n *html.Node) {
	attrs := make([]html.Attribute, len(n.Attr))
	copy(attrs, n.Attr)

	for _, a := range attrs {
		if strings.EqualFold(a.Key, "src") || strings.EqualFold(a.Key, "srcset") {
			continue
		}
		var dest string
		if srcsetRe.MatchString(a.Val) {
			dest = "srcset"
		} else if srcRe.MatchString(a.Val) {
			dest = "src"
		} else {
			continue
		}

		if nodeHasTag(n, "img", "picture") {
			setAttr(n, dest, a.Val)
		} else if !hasDescendantTag(n, "img", "picture") {
			img := newElement("img")
			setAttr(img, dest, a.Val)
			n.AppendChild(img)
		}
	}
}

func (e *extractor) fixIfLazyImage(n *html.Node) *html.Node {
	if nodeHasTag(n, "img", "picture", "figure") && isImageLazy(n) {
		fixLazyImage(n)
	}
	return n
}

// insideDataTable: is the closest table at or above this node a data table?
func (e *extractor) insideDataTable(n *html.Node) bool {
	table := hasAncestorTag(n, "table")
	return table != nil && e.isDataTable(table)
}

func isEmbed(n *html.Node) bool {
	return nodeHasTag(n, "object", "embed", "iframe")
}

// isEmbedWithVideo: people love movies, so embeds pointing at the
// whitelisted video hosts are never removed.
func isEmbedWithVideo(n *html.Node) bool {
	if !isEmbed(n) {
		return false
	}
	for _, a := range n.Attr {
		if videosRe.MatchString(a.Val) {
			return true
		}
	}
	if !nodeHasTag(n, "object") {
		return false
	}
	return videosRe.MatchString(renderNode(n))
}

// checkEmbedsForRemoval counts the embeds under a node; a video embed means
// the node cannot be removed at all.
func checkEmbedsForRemoval(n *html.Node) (int, bool) {
	count := 0
	last := skipDescendants(n)
	for curr := followingNode(n); curr != last; curr = followingNode(curr) {
		if isEmbedWithVideo(curr) {
			return 0, false
		}
		if isEmbed(curr) {
			count++
		}
	}
	return count, true
}

// contentCharCount counts a byte in the node's raw text content.
func contentCharCount(n *html.Node, c byte) int {
	return charCount(textContent(n), c)
}

// nodeLooksFishy is the conditional-cleaning heuristic: content length,
// class weight, link density, counts of images, lists and embeds.
func (e *extractor) nodeLooksFishy(n *html.Node) bool {
	if e.insideDataTable(n) {
		return false
	}

	weight := e.classWeight(n)
	if weight < 0 {
		return true
	}

	if contentCharCount(n, ',') >= 10 {
		return false
	}

	// If there are not very many commas, and the number of non-paragraph
	// elements is more than paragraphs or other ominous signs, remove the
	// element.
	pCount := tagCount(n, "p")
	imgCount := tagCount(n, "img")
	liCount := tagCount(n, "li") - 100
	inputCount := tagCount(n, "input")

	embedCount, removable := checkEmbedsForRemoval(n)
	if !removable {
		return false
	}
	density := linkDensity(n)
	contentLength := textNormalizedContentLength(n)
	isList := nodeHasTag(n, "ul", "ol")

	if hasAncestorTag(n, "figure") == nil {
		if imgCount > 1 && float64(pCount) < float64(imgCount)/2 {
			return true
		}
		if !isList && contentLength < 25 && (imgCount == 0 || imgCount > 2) {
			return true
		}
	}
	if !isList && liCount > pCount {
		return true
	}
	if inputCount > pCount/3 {
		return true
	}
	if !isList && weight < 25 && density > 0.2 {
		return true
	}
	if weight >= 25 && density > 0.5 {
		return true
	}
	return (embedCount == 1 && contentLength < 75) || embedCount > 1
}

// cleanConditionally removes fishy-looking elements of the given tag.
// Children are cleaned before their parents are re-evaluated, so the
// traversal direction matters.
func (e *extractor) cleanConditionally(article *html.Node, tag string) {
	if !e.flagActive(flagCleanConditionally) {
		return
	}
	bwRemoveDescendantsIf(article, func(n *html.Node) bool {
		if !nodeHasTag(n, tag) {
			return false
		}
		fishy := e.nodeLooksFishy(n)
		if fishy {
			slog.Debug("cleaning conditionally", "tag", tag)
		}
		return fishy
	})
}

// cleanAll removes every element of the given tag, video embeds excepted.
func cleanAll(article *html.Node, tag string) {
	bwRemoveDescendantsIf(article, func(n *html.Node) bool {
		return nodeHasTag(n, tag) && !isEmbedWithVideo(n)
	})
}

func isShare(n *html.Node) bool {
	return shareRe.MatchString(attr(n, "class")) || shareRe.MatchString(attr(n, "id"))
}

// isSmallShareNode: an element with little content that has "share" in its
// id or class.
func isSmallShareNode(n *html.Node) bool {
	return isShare(n) && textContentLength(n) < defaultCharThreshold
}

// singleH2 returns the article's only h2, or nil when there are none or
// several.
func singleH2(article *html.Node) *html.Node {
	var h2 *html.Node
	last := skipDescendants(article)
	for curr := followingNode(article); curr != last; curr = followingNode(curr) {
		if nodeHasTag(curr, "h2") {
			if h2 != nil {
				return nil
			}
			h2 = curr
		}
	}
	return h2
}

// removeDuplicateTitle drops a lone h2 whose text substantially equals the
// article title: it's being used as a header, and the title is already
// extracted separately.
func (e *extractor) removeDuplicateTitle(article *html.Node) {
	title := e.meta.Title
	if title == "" {
		return
	}
	h2 := singleH2(article)
	if h2 == nil {
		return
	}
	h2Text := textContent(h2)

	diff := float64(len(h2Text)-len(title)) / float64(len(title))
	if math.Abs(diff) >= 0.5 {
		return
	}
	var match bool
	if diff > 0 {
		match = strings.Contains(h2Text, title)
	} else {
		match = strings.Contains(title, h2Text)
	}
	if match {
		unlink(h2)
	}
}

// isSpuriousHeader checks things like class names to spot headers that are
// not part of the content.
func (e *extractor) isSpuriousHeader(n *html.Node) bool {
	return nodeHasTag(n, "h1", "h2") && e.classWeight(n) < 0
}

// isExtraParagraph: a paragraph with no media and no text. Nasty iframes
// are gone by the time this runs, only video ones remain.
func isExtraParagraph(n *html.Node) bool {
	if !nodeHasTag(n, "p") {
		return false
	}
	if hasDescendantTag(n, "img", "embed") || hasDescendantTag(n, "object", "iframe") {
		return false
	}
	return textContentLength(n) == 0
}

func isLineBreakBeforeParagraph(n *html.Node) bool {
	return nodeHasTag(n, "br") && nodeHasTag(nextElement(n), "p")
}

// unwrapIfSingleCellTable replaces a table holding a single cell with the
// cell itself, renamed to p when everything inside is phrasing content.
func unwrapIfSingleCellTable(n *html.Node) *html.Node {
	if !nodeHasTag(n, "table") {
		return n
	}
	tbody := hasSingleTagInside(n, "tbody")
	if tbody == nil {
		tbody = n
	}
	row := hasSingleTagInside(tbody, "tr")
	if row == nil {
		return n
	}
	cell := hasSingleTagInside(row, "td")
	if cell == nil {
		return n
	}

	if forallDescendants(cell, isPhrasingContent) {
		renameNode(cell, "p")
	} else {
		renameNode(cell, "div")
	}
	replaceNode(n, cell)
	return cell
}

// prepArticle cleans the candidate article for display. The order of the
// passes matters: data tables are marked before any element is removed, and
// the conditional table/ul/div passes come after the other cleaning passes
// because those change what looks fishy.
func (e *extractor) prepArticle(article *html.Node) {
	cleanStyles(article)

	// Check for data tables before anything else, to avoid removing items
	// in those tables, which are often isolated even though they're
	// visually linked to other content-ful elements.
	changeDescendants(article, e.markIfDataTable)

	changeDescendants(article, e.fixIfLazyImage)

	e.cleanConditionally(article, "form")
	e.cleanConditionally(article, "fieldset")
	cleanAll(article, "object")
	cleanAll(article, "embed")
	cleanAll(article, "h1")
	cleanAll(article, "footer")
	cleanAll(article, "link")
	cleanAll(article, "aside")

	removeDescendantsIf(article, isSmallShareNode)
	e.removeDuplicateTitle(article)

	cleanAll(article, "iframe")
	cleanAll(article, "input")
	cleanAll(article, "textarea")
	cleanAll(article, "select")
	cleanAll(article, "button")
	removeDescendantsIf(article, e.isSpuriousHeader)

	e.cleanConditionally(article, "table")
	e.cleanConditionally(article, "ul")
	e.cleanConditionally(article, "div")

	removeDescendantsIf(article, isExtraParagraph)
	removeDescendantsIf(article, isLineBreakBeforeParagraph)
	changeDescendants(article, unwrapIfSingleCellTable)
}
