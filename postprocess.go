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
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// toAbsoluteURL resolves a URL against the configured base. Hash links are
// left alone unless the base was overridden by the document itself; failed
// resolution leaves the original value in place.
func (e *extractor) toAbsoluteURL(u string) string {
	if !e.opts.urlOverride && strings.HasPrefix(u, "#") {
		return u
	}
	u = strings.TrimRight(u, asciiWhitespace)
	if e.opts.baseURL == "" {
		return u
	}
	base, err := url.Parse(e.opts.baseURL)
	if err != nil {
		return u
	}
	ref, err := url.Parse(u)
	if err != nil {
		return u
	}
	return base.ResolveReference(ref).String()
}

// removeButPreserveContent drops a node but keeps its children in the same
// location: a lone text child stays a bare text node, anything else is
// wrapped in a span. Returns the node now in that position.
func removeButPreserveContent(n *html.Node) *html.Node {
	child := n.FirstChild
	if child != nil && child.NextSibling == nil && child.Type == html.TextNode {
		repl := newTextNode(child.Data)
		replaceNode(n, repl)
		return repl
	}

	span := newElement("span")
	for n.FirstChild != nil {
		appendChild(span, n.FirstChild)
	}
	replaceNode(n, span)
	return span
}

// fixNonAbsoluteLink rids a link of relative or javascript URLs. Links with
// javascript: URIs won't work after scripts have been removed from the
// page, so they are replaced by their content.
func (e *extractor) fixNonAbsoluteLink(n *html.Node) *html.Node {
	if !nodeHasTag(n, "a") {
		return n
	}
	href := attr(n, "href")
	if href == "" {
		return n
	}
	if strings.Contains(strings.ToLower(href), "javascript:") {
		return removeButPreserveContent(n)
	}
	setAttr(n, "href", e.toAbsoluteURL(href))
	return n
}

type srcsetEntry struct {
	url        string
	descriptor string
}

// parseSrcset splits a srcset into entries of URL plus optional descriptor.
// A trailing comma on a URL terminates an entry with no descriptor.
func parseSrcset(s string) []srcsetEntry {
	var entries []srcsetEntry
	i := 0
	for i < len(s) {
		for i < len(s) && isASCIISpace(s[i]) {
			i++
		}
		start := i
		for i < len(s) && !isASCIISpace(s[i]) {
			i++
		}
		if i == start {
			break
		}
		u := s[start:i]
		if strings.HasSuffix(u, ",") {
			entries = append(entries, srcsetEntry{url: strings.TrimSuffix(u, ",")})
			continue
		}

		for i < len(s) && isASCIISpace(s[i]) {
			i++
		}
		start = i
		for i < len(s) && s[i] != ',' {
			i++
		}
		desc := s[start:i]
		if i < len(s) && s[i] == ',' {
			i++
		}
		entries = append(entries, srcsetEntry{url: u, descriptor: desc})
	}
	return entries
}

const maxSrcsetEntryLen = 4096

// buildSrcset reassembles a srcset, joining entries with ", " and putting a
// single space between URL and descriptor. Oversize entries truncate the
// list.
func buildSrcset(entries []srcsetEntry) string {
	var b strings.Builder
	for i, entry := range entries {
		if len(entry.url) > maxSrcsetEntryLen || len(entry.descriptor) > maxSrcsetEntryLen {
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(entry.url)
		if entry.descriptor != "" {
			b.WriteString(" ")
			b.WriteString(entry.descriptor)
		}
	}
	return b.String()
}

func (e *extractor) toAbsoluteSrcset(srcset string) string {
	entries := parseSrcset(srcset)
	for i := range entries {
		entries[i].url = e.toAbsoluteURL(entries[i].url)
	}
	return buildSrcset(entries)
}

var mediaElems = []string{"img", "picture", "figure", "video", "audio", "source"}

// fixRelativeMedia rewrites the media URLs of a node to absolute ones.
func (e *extractor) fixRelativeMedia(n *html.Node) *html.Node {
	if !nodeHasTag(n, mediaElems...) {
		return n
	}
	if src := attr(n, "src"); src != "" {
		setAttr(n, "src", e.toAbsoluteURL(src))
	}
	if poster := attr(n, "poster"); poster != "" {
		setAttr(n, "poster", e.toAbsoluteURL(poster))
	}
	if srcset := attr(n, "srcset"); srcset != "" {
		setAttr(n, "srcset", e.toAbsoluteSrcset(srcset))
	}
	return n
}

// cleanClasses strips class attributes except the classes the engine itself
// preserves ("page" by default).
func (e *extractor) cleanClasses(n *html.Node) *html.Node {
	class := attr(n, "class")
	if class == "" {
		return n
	}
	var kept []string
	for _, c := range strings.Fields(class) {
		for _, preserve := range e.opts.classesToPreserve {
			if c == preserve {
				kept = append(kept, c)
				break
			}
		}
	}
	if len(kept) > 0 {
		setAttr(n, "class", strings.Join(kept, " "))
	} else {
		removeAttr(n, "class")
	}
	return n
}

// cleanIfTextNode normalizes text nodes, preserving whitespace inside
// preformatted blocks, and collapses a pre>code pair into a single pre so
// serializers don't indent inside it.
func cleanIfTextNode(n *html.Node) *html.Node {
	if nodeHasTag(n, "code") && nodeHasTag(n.Parent, "pre") {
		parent := n.Parent
		replaceNode(parent, n)
		renameNode(n, "pre")
		return n
	}
	if n.Type == html.TextNode {
		n.Data = normalizedOrPreformatted(n)
	}
	return n
}

// fillIfNotSelfClosing puts a single-space text node inside elements that are not
// allowed to be self-closing, so serializers won't make them so.
func fillIfNotSelfClosing(n *html.Node) *html.Node {
	if nodeHasTag(n, "iframe", "em", "a") && n.FirstChild == nil {
		n.AppendChild(newTextNode(" "))
	}
	return n
}

// postProcess runs the final modifications on the extracted article:
// absolute URLs, class stripping, text normalization.
func (e *extractor) postProcess(article *html.Node) {
	changeDescendants(article, e.fixNonAbsoluteLink)
	changeDescendants(article, e.fixRelativeMedia)
	changeDescendants(article, e.cleanClasses)
	changeDescendants(article, cleanIfTextNode)
	changeDescendants(article, fillIfNotSelfClosing)
}
