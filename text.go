package readview

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const asciiWhitespace = " \t\n\v\f\r"

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

const (
	nbsp = "\u00a0" // non-breaking space, too common to ignore
	zwsp = "\u200b" // zero-width space, dropped entirely
)

// normalizeText collapses runs of ASCII whitespace and non-breaking spaces
// into a single space and drops zero-width spaces. Leading and trailing
// whitespace is kept; the length helpers account for it.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		switch {
		case isASCIISpace(s[i]) || strings.HasPrefix(s[i:], nbsp):
			b.WriteByte(' ')
			for i < len(s) {
				if isASCIISpace(s[i]) {
					i++
				} else if strings.HasPrefix(s[i:], nbsp) {
					i += len(nbsp)
				} else if strings.HasPrefix(s[i:], zwsp) {
					i += len(zwsp)
				} else {
					break
				}
			}
		case strings.HasPrefix(s[i:], zwsp):
			i += len(zwsp)
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// textContent concatenates the text nodes under n, in document order.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func normalizedContent(n *html.Node) string {
	return normalizeText(textContent(n))
}

// normalizedOrPreformatted respects whitespace for text inside code or pre
// ancestry. Must only be called on text nodes.
func normalizedOrPreformatted(n *html.Node) string {
	if hasAncestorTag(n, "code") != nil || hasAncestorTag(n, "pre") != nil {
		return textContent(n)
	}
	return normalizedContent(n)
}

// textContentLength is the byte length of the node's text content with
// leading and trailing whitespace trimmed, without whitespace collapsing.
func textContentLength(n *html.Node) int {
	return len(strings.Trim(textContent(n), asciiWhitespace))
}

// textNormalizedContentLength is the length in code points after full
// normalization, excluding a leading and a trailing space. This is the
// measure used to compare article sizes.
func textNormalizedContentLength(n *html.Node) int {
	content := normalizedContent(n)
	if content == "" {
		return 0
	}
	length := utf8.RuneCountInString(content)
	if content[0] == ' ' {
		length--
	}
	if len(content) > 1 && content[len(content)-1] == ' ' {
		length--
	}
	return length
}

// charCount counts the occurrences of a byte in a string.
func charCount(s string, c byte) int {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			count++
		}
	}
	return count
}

// titleSeparators are the characters that split a page title from the site
// name, when surrounded by spaces.
const titleSeparators = `|-\/>»`

// wordCount counts whitespace-separated words; with separatorsAsSpaces the
// title separator characters split words too.
func wordCount(s string, separatorsAsSpaces bool) int {
	return len(strings.FieldsFunc(s, func(r rune) bool {
		if r < utf8.RuneSelf && isASCIISpace(byte(r)) {
			return true
		}
		return separatorsAsSpaces && strings.ContainsRune(titleSeparators, r)
	}))
}

// findLastSeparator returns the byte offset of the last title separator that
// has a space on both sides, or -1 if none.
func findLastSeparator(s string) int {
	last := -1
	for i, r := range s {
		if !strings.ContainsRune(titleSeparators, r) {
			continue
		}
		width := utf8.RuneLen(r)
		if i > 0 && s[i-1] == ' ' && i+width < len(s) && s[i+width] == ' ' {
			last = i
		}
	}
	return last
}

// linkDensity is the fraction of the node's normalized text that lies
// inside descendant links. Zero if the node has no text.
func linkDensity(n *html.Node) float64 {
	textLength := float64(textNormalizedContentLength(n))
	if textLength == 0 {
		return 0
	}
	linkLength := totalForDescendants(n, func(d *html.Node) float64 {
		if nodeHasTag(d, "a") {
			return float64(textNormalizedContentLength(d))
		}
		return 0
	})
	return linkLength / textLength
}

// Elements that qualify as phrasing content regardless of their children.
var phrasingElems = []string{
	"abbr", "audio", "b", "bdo", "br", "button", "cite", "code", "data",
	"datalist", "dfn", "em", "embed", "i", "img", "input", "kbd", "label",
	"mark", "math", "meter", "noscript", "object", "output", "progress", "q",
	"ruby", "samp", "script", "select", "small", "span", "strong", "sub",
	"sup", "textarea", "time", "var", "wbr",
}

func isDefinitelyPhrasingContent(n *html.Node) bool {
	return n.Type == html.TextNode || nodeHasTag(n, phrasingElems...)
}

func isConditionalPhrasingContent(n *html.Node) bool {
	return nodeHasTag(n, "a", "del", "ins")
}

// isPhrasingContent determines if a node qualifies as phrasing content, i.e.
// inline-level content that may appear inside a paragraph.
func isPhrasingContent(n *html.Node) bool {
	if isDefinitelyPhrasingContent(n) {
		return true
	}
	if !isConditionalPhrasingContent(n) {
		return false
	}
	return forallDescendants(n, func(d *html.Node) bool {
		return isDefinitelyPhrasingContent(d) || isConditionalPhrasingContent(d)
	})
}

// hasSingleTagInside returns the single element child with the given tag, if
// n contains exactly one element and no text node ending in a non-space
// character.
func hasSingleTagInside(n *html.Node, tag string) *html.Node {
	var elementChild *html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			if elementChild != nil || !nodeHasTag(child, tag) {
				return nil
			}
			elementChild = child
		case html.TextNode:
			if hasContentRe.MatchString(child.Data) {
				return nil
			}
		}
	}
	return elementChild
}

var namedEntities = strings.NewReplacer(
	"&amp;", "&",
	"&quot;", `"`,
	"&apos;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

var reverseNamedEntities = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&apos;",
	"<", "&lt;",
	">", "&gt;",
)

// unescapeEntities converts the common HTML entities and decimal numeric
// references back to their characters.
func unescapeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	s = decimalEntityRe.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.Atoi(m[2 : len(m)-1])
		if err != nil || code <= 0 || code > 0x10ffff {
			return m
		}
		return string(rune(code))
	})
	return namedEntities.Replace(s)
}

func escapeEntities(s string) string {
	return reverseNamedEntities.Replace(s)
}

// trimAndUnescape cleans up a metadata string for presentation.
func trimAndUnescape(s string) string {
	return unescapeEntities(strings.Trim(s, asciiWhitespace))
}
