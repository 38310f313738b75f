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
 * The article grabber: using a variety of metrics (content score, class
 * names, element types), find the content that is most likely to be the
 * stuff a user wants to read, and return it wrapped up in a div. Based on
 * Arc90's readability.js via Mozilla's reader view.
 */

package readview

import (
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Element tags to score by default.
var tagsToScore = []string{"section", "h2", "h3", "h4", "h5", "h6", "p", "td", "pre"}

// Containers removed outright when they hold nothing but breaks.
var divisionElems = []string{"div", "section", "header", "h1", "h2", "h3", "h4", "h5", "h6"}

// Block-level elements: a div containing none of these can be treated as a
// paragraph.
var blockElems = []string{"a", "blockquote", "dl", "div", "img", "ol", "p", "pre", "table", "ul", "select"}

// Siblings gathered next to the top candidate keep their tag only if it is
// one of these; anything else is renamed to div.
var keepTagOnGather = []string{"div", "article", "section", "p"}

type attempt struct {
	article    *html.Node
	textLength int
}

// checkByline checks if this node holds the byline and, if it does,
// remembers the value. The check is single-shot across the whole document
// and across retries.
func (e *extractor) checkByline(n *html.Node) bool {
	if e.bylineFound {
		return false
	}

	qualifies := attrEquals(n, "rel", "author") ||
		strings.Contains(attr(n, "itemprop"), "author") ||
		bylineRe.MatchString(attr(n, "class")) ||
		bylineRe.MatchString(attr(n, "id"))
	if !qualifies {
		return false
	}

	if length := textContentLength(n); length > 0 && length < 100 {
		if e.meta.Byline == "" {
			e.meta.Byline = normalizedContent(n)
		}
		e.bylineFound = true
	}
	return e.bylineFound
}

// isNodeUnlikely: considering class, id and role, is this node unlikely to
// hold readable content? A complementary role always counts as unlikely;
// otherwise nodes inside tables, the body and links are never unlikely.
func isNodeUnlikely(n *html.Node) bool {
	if attrEquals(n, "role", "complementary") {
		return true
	}
	if hasAncestorTag(n, "table") != nil || nodeHasTag(n, "body", "a") {
		return false
	}
	return nodeHasUnlikelyClassID(n)
}

func isBreakIfElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return true
	}
	return nodeHasTag(n, "br", "hr")
}

func isElementWithoutContent(n *html.Node) bool {
	if n.Type != html.ElementNode || textContentLength(n) > 0 {
		return false
	}
	return forallDescendants(n, isBreakIfElement)
}

func isDivisionWithoutContent(n *html.Node) bool {
	if !nodeHasTag(n, divisionElems...) {
		return false
	}
	return isElementWithoutContent(n)
}

// noNeedToScore: do we know for sure that this node won't be scored? The
// byline capture side effect lives here and must run before the unlikely
// check.
func (e *extractor) noNeedToScore(n *html.Node) bool {
	if !isNodeVisible(n) {
		return true
	}
	if e.checkByline(n) {
		return true
	}
	if e.flagActive(flagStripUnlikely) && isNodeUnlikely(n) {
		return true
	}
	return isDivisionWithoutContent(n)
}

func isBlockElement(n *html.Node) bool {
	return nodeHasTag(n, blockElems...)
}

// reparentToPSibling moves a node into a preceding p wrapper, creating it
// first when needed. Returns the wrapper, or nil if no reparenting happened
// (a wrapper is never started for whitespace alone).
func reparentToPSibling(n, wrapper *html.Node) *html.Node {
	if wrapper == nil {
		if isWhitespaceNode(n) {
			return nil
		}
		wrapper = newElement("p")
		n.Parent.InsertBefore(wrapper, n)
	}
	appendChild(wrapper, n)
	return wrapper
}

// handleDivNode groups runs of phrasing children under p wrappers, then
// either unwraps a div holding a lone paragraph or turns a block-less div
// into a paragraph itself. Returns the next node to process.
func (e *extractor) handleDivNode(n *html.Node) *html.Node {
	var wrapper *html.Node
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		if isPhrasingContent(child) {
			wrapper = reparentToPSibling(child, wrapper)
		} else if wrapper != nil {
			pruneTrailingWhitespace(wrapper)
			wrapper = nil
		}
		child = next
	}

	if inner := hasSingleTagInside(n, "p"); inner != nil && linkDensity(n) < 0.25 {
		replaceNode(n, inner)
		e.markToScore(inner)
		return followingNode(inner)
	}
	if !hasSuchDescendant(n, isBlockElement) {
		renameNode(n, "p")
		e.markToScore(n)
	}
	return followingNode(n)
}

// preScore is the first grabber pass: trash nodes that look cruddy, mark
// the ones worth scoring, and turn divs used as paragraphs into p tags.
func (e *extractor) preScore(root *html.Node) {
	n := followingNode(root)
	for n != nil {
		if e.noNeedToScore(n) {
			n = removeAndGetFollowing(n)
			continue
		}
		if nodeHasTag(n, tagsToScore...) {
			e.markToScore(n)
		}
		if nodeHasTag(n, "div") {
			n = e.handleDivNode(n)
			continue
		}
		n = followingNode(n)
	}
}

// initializeNode seeds a node's score from its tag and class weight. One
// shot per node.
func (e *extractor) initializeNode(n *html.Node) {
	switch {
	case nodeHasTag(n, "div"):
		e.addToScore(n, 5)
	case nodeHasTag(n, "pre", "td", "blockquote"):
		e.addToScore(n, 3)
	case nodeHasTag(n, "address", "form"):
		e.addToScore(n, -3)
	case nodeHasTag(n, "ol", "ul", "dl", "dd", "dt", "li"):
		e.addToScore(n, -3)
	case nodeHasTag(n, "h1", "h2", "h3", "h4", "h5", "h6", "th"):
		e.addToScore(n, -5)
	}
	e.addToScore(n, e.classWeight(n))
	e.markInitialized(n)
}

// assignContentScore scores a paragraph-like node on how content-y it looks
// (text length, commas) and propagates the score to up to three ancestors,
// initializing them as candidates along the way.
func (e *extractor) assignContentScore(n *html.Node) {
	if n.Parent == nil || n.Parent.Type != html.ElementNode {
		return
	}

	text := normalizedContent(n)
	length := utf8.RuneCountInString(text)
	if length < 25 {
		return
	}

	// A point for the paragraph itself, points for the commas, and a point
	// per 100 characters up to 3.
	score := 1
	score += charCount(text, ',') + 1
	score += min(length/100, 3)

	level := 3
	for anc := n.Parent; anc != nil && level > 0; anc, level = anc.Parent, level-1 {
		if anc.Type != html.ElementNode {
			continue
		}
		if anc.Parent == nil || anc.Parent.Type != html.ElementNode {
			continue
		}
		if !e.isInitialized(anc) {
			e.initializeNode(anc)
			e.markCandidate(anc)
		}
		switch level {
		case 3:
			e.addToScore(anc, float64(score))
		case 2:
			e.addToScore(anc, float64(score)/2)
		case 1:
			e.addToScore(anc, float64(score)/6)
		}
	}
}

func (e *extractor) scoreNodes(root *html.Node) {
	for n := followingNode(root); n != nil; n = followingNode(n) {
		if e.isToScore(n) {
			e.assignContentScore(n)
		}
	}
}

// findAncestorWithMoreContent walks up from the top candidate and adopts the
// first ancestor scoring higher than the node below it, giving up once a
// score falls under a third of the top's: a score going up in the first few
// steps is a decent sign that more content is lurking higher up the tree.
func (e *extractor) findAncestorWithMoreContent(n *html.Node) *html.Node {
	lastScore := e.loadScore(n)
	scoreThreshold := lastScore / 3

	for anc := n.Parent; anc != nil; anc = anc.Parent {
		if nodeHasTag(anc, "body") {
			break
		}
		ancestorScore := e.loadScore(anc)
		if ancestorScore == 0 {
			continue
		}
		if ancestorScore < scoreThreshold {
			break
		}
		if ancestorScore > lastScore {
			return anc
		}
		lastScore = ancestorScore
	}
	return n
}

const minimumTopCandidates = 3

// findBetterTopCandidate promotes the nominal top candidate to an ancestor
// that contains at least three of the runner-up candidates with comparable
// scores, then keeps climbing while scores rise, and finally adopts
// single-child parents so sibling joining has something to work with.
func (e *extractor) findBetterTopCandidate(tops []*html.Node) *html.Node {
	top := tops[0]
	topScore := e.loadScore(top)

	if topScore != 0 {
		for anc := top.Parent; anc != nil; anc = anc.Parent {
			if nodeHasTag(anc, "body") {
				break
			}
			containedTops := 0
			for _, t := range tops[1:] {
				if e.loadScore(t)/topScore < 0.75 {
					continue
				}
				if isAncestorOf(anc, t) {
					containedTops++
				}
			}
			if containedTops >= minimumTopCandidates {
				top = anc
				break
			}
		}
	}
	if !e.isInitialized(top) {
		e.initializeNode(top)
	}

	top = e.findAncestorWithMoreContent(top)

	for top.Parent != nil && !nodeHasTag(top.Parent, "body") && elementChildCount(top.Parent) == 1 {
		top = top.Parent
	}
	if !e.isInitialized(top) {
		e.initializeNode(top)
	}
	return top
}

// findTopCandidate normalizes every candidate's score by link density and
// keeps a short descending list; the winner may then be promoted to an
// ancestor. Returns nil when no candidate (or only the body) was found.
func (e *extractor) findTopCandidate(root *html.Node) *html.Node {
	tops := make([]*html.Node, 0, e.opts.nTopCandidates)

	for n := followingNode(root); n != nil; n = followingNode(n) {
		if !e.isCandidate(n) {
			continue
		}
		score := e.loadScore(n) * (1 - linkDensity(n))
		e.saveScore(n, score)

		for i := 0; i <= len(tops); i++ {
			if i == len(tops) {
				if i < e.opts.nTopCandidates {
					tops = append(tops, n)
				}
				break
			}
			if score > e.loadScore(tops[i]) {
				tops = append(tops[:i], append([]*html.Node{n}, tops[i:]...)...)
				if len(tops) > e.opts.nTopCandidates {
					tops = tops[:e.opts.nTopCandidates]
				}
				break
			}
		}
	}

	if len(tops) == 0 || nodeHasTag(tops[0], "body") {
		return nil
	}
	return e.findBetterTopCandidate(tops)
}

// topCandidateFromAll is the last resort: move everything in the body into
// a fresh div and use that as the top candidate.
func (e *extractor) topCandidateFromAll(root *html.Node) (*html.Node, error) {
	body := getBody(root)
	if body == nil {
		return nil, ErrMalformed
	}

	div := newElement("div")
	for body.FirstChild != nil {
		appendChild(div, body.FirstChild)
	}
	body.AppendChild(div)

	e.initializeNode(div)
	return div, nil
}

// appendContent moves a gathered node into the article, renaming uncommon
// block elements to div so they don't get filtered out later by accident.
func appendContent(content, n *html.Node) {
	if !nodeHasTag(n, keepTagOnGather...) {
		renameNode(n, "div")
	}
	appendChild(content, n)
}

// isParagraphWithContent: a p whose text is long with few links, or fully
// link-free and ending like a sentence.
func isParagraphWithContent(n *html.Node) bool {
	if !nodeHasTag(n, "p") {
		return false
	}
	content := normalizedContent(n)
	length := len(content)
	density := linkDensity(n)

	if length > 80 && density < 0.25 {
		return true
	}
	return density == 0 && sentenceDotRe.MatchString(content)
}

// gatherRelatedContent looks through the top candidate's siblings for
// content that might also be related, like preambles or content split by
// ads, and moves the keepers into a fresh wrapper div.
func (e *extractor) gatherRelatedContent(top *html.Node) *html.Node {
	parent := top.Parent
	topScore := e.loadScore(top)
	scoreThreshold := math.Max(topScore*0.2, 10)
	topClass := attr(top, "class")

	content := newElement("div")

	for child := parent.FirstChild; child != nil; {
		next := child.NextSibling

		if child == top {
			appendContent(content, child)
			child = next
			continue
		}

		// Bonus for siblings sharing the top candidate's class name.
		contentBonus := 0.0
		if class := attr(child, "class"); class != "" && strings.EqualFold(class, topClass) {
			contentBonus = topScore * 0.2
		}

		if e.isInitialized(child) && e.loadScore(child)+contentBonus >= scoreThreshold {
			appendContent(content, child)
		} else if isParagraphWithContent(child) {
			appendContent(content, child)
		}
		child = next
	}
	return content
}

func setMainDivAttrs(div *html.Node) {
	setAttr(div, "id", "readability-page-1")
	setAttr(div, "class", "page")
}

// createMainDiv wraps the article's children in a single main div.
func createMainDiv(article *html.Node) {
	div := newElement("div")
	setMainDivAttrs(div)
	for article.FirstChild != nil {
		appendChild(div, article.FirstChild)
	}
	article.AppendChild(div)
}

// needsOneMoreTry saves the current attempt and, if the article came out too
// short, weakens one heuristic flag for the next round.
func (e *extractor) needsOneMoreTry(article *html.Node) bool {
	length := textNormalizedContentLength(article)
	e.attempts = append(e.attempts, attempt{article: article, textLength: length})
	if length >= e.opts.charThreshold {
		return false
	}

	switch {
	case e.flagActive(flagStripUnlikely):
		e.removeFlag(flagStripUnlikely)
	case e.flagActive(flagWeightClasses):
		e.removeFlag(flagWeightClasses)
	case e.flagActive(flagCleanConditionally):
		e.removeFlag(flagCleanConditionally)
	default:
		return false
	}
	slog.Debug("article too short, retrying", "length", length)
	return true
}

// bestAttempt returns the longest text found during the different loops, or
// nil if every attempt came out empty.
func (e *extractor) bestAttempt() *html.Node {
	if len(e.attempts) == 0 {
		return nil
	}
	best := e.attempts[0]
	for _, a := range e.attempts[1:] {
		if a.textLength > best.textLength {
			best = a
		}
	}
	if best.textLength == 0 {
		return nil
	}
	return best.article
}

// extractTextDirection finds the text direction from the final top
// candidate or its ancestors. The given parent is the node's parent in the
// original tree, before it moved into the article.
func (e *extractor) extractTextDirection(n, parent *html.Node) {
	ancestor := n
	for ancestor != nil {
		if dir := attr(ancestor, "dir"); dir != "" {
			e.meta.Dir = dir
			return
		}
		if ancestor == n {
			ancestor = parent
		} else {
			ancestor = ancestor.Parent
		}
	}
}

// grabArticle runs the scoring pipeline on a working copy of the document,
// retrying with weakened flags until the article is long enough, and keeps
// the best attempt.
func (e *extractor) grabArticle(doc *html.Node) (*html.Node, error) {
	var top, topParent *html.Node

	for {
		slog.Debug("starting grab attempt", "flags", e.flags)
		tempdoc := cloneTree(doc)
		root := rootElement(tempdoc)
		e.info = make(map[*html.Node]*nodeInfo)

		e.preScore(root)
		e.scoreNodes(root)

		topIsNew := false
		top = e.findTopCandidate(root)
		if top == nil {
			fallback, err := e.topCandidateFromAll(root)
			if err != nil {
				return nil, err
			}
			top = fallback
			topIsNew = true
		}
		topParent = top.Parent

		article := e.gatherRelatedContent(top)
		e.prepArticle(article)

		if article.FirstChild != nil {
			if topIsNew {
				setMainDivAttrs(top)
			} else {
				createMainDiv(article)
			}
		}

		if !e.needsOneMoreTry(article) {
			break
		}
	}

	article := e.bestAttempt()
	if article == nil {
		return nil, ErrNoContent
	}
	e.extractTextDirection(top, topParent)
	return article, nil
}
