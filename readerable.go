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

package readview

import (
	"math"
	"slices"

	"golang.org/x/net/html"
)

// readerableScore grades a single node: visible, not unlikely, not a
// paragraph inside a list item, and long enough to matter.
func readerableScore(n *html.Node, minContentLength int) float64 {
	if !isNodeVisible(n) {
		return 0
	}
	if nodeHasUnlikelyClassID(n) {
		return 0
	}
	if matches(n, "li p") {
		return 0
	}
	length := textContentLength(n)
	if length < minContentLength {
		return 0
	}
	return math.Sqrt(float64(length - minContentLength))
}

// Readerable decides whether the document probably contains a readable
// article, without running the full extraction. It scores the paragraph
// and preformatted nodes, plus divs holding bare line breaks — some
// articles' DOM structures look like
//
//	<div>
//	  Sentences<br>
//	  <br>
//	  Sentences<br>
//	</div>
//
// and short-circuits as soon as the threshold is crossed. The tree is not
// modified.
func Readerable(doc *html.Node, opts ...Option) bool {
	o := defaultOpts()
	for _, opt := range opts {
		opt(o)
	}

	nodes := querySelectorAll(doc, "p, pre")

	// Score each div with a br child once, standing in for its contents.
	var brParents []*html.Node
	for _, br := range querySelectorAll(doc, "div > br") {
		if !slices.Contains(brParents, br.Parent) {
			brParents = append(brParents, br.Parent)
		}
	}
	nodes = append(nodes, brParents...)
	nodes = slices.DeleteFunc(nodes, func(n *html.Node) bool {
		return slices.ContainsFunc(brParents, func(div *html.Node) bool {
			return div != n && isAncestorOf(div, n)
		})
	})

	score := 0.0
	for _, n := range nodes {
		score += readerableScore(n, o.minContentLength)
		if score > o.minScore {
			return true
		}
	}
	return false
}
