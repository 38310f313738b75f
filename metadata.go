package readview

import (
	"strings"

	"golang.org/x/net/html"
)

// Metadata is the record of article metadata harvested from the document.
// Every field is optional; absent fields are empty strings.
type Metadata struct {
	Title    string
	Byline   string
	Excerpt  string
	SiteName string
	// Dir is the text direction ("ltr" or "rtl") found on an ancestor of the
	// final top candidate.
	Dir string
}

// Ranked sources for each metadata field. A smaller index outranks a larger
// one; on a tie the later match wins.
var (
	titleNames = []string{
		"dc:title", "dcterm:title", "og:title", "weibo:article:title",
		"weibo:webpage:title", "title", "twitter:title",
	}
	bylineNames = []string{"dc:creator", "dcterm:creator", "author"}
	excerptNames = []string{
		"dc:description", "dcterm:description", "og:description",
		"weibo:article:description", "weibo:webpage:description",
		"description", "twitter:description",
	}
)

// harvester tracks the best-ranked source seen so far for each field during
// a single walk of the document's meta elements.
type harvester struct {
	meta                       *Metadata
	title, byline, excerpt int
}

func newHarvester(meta *Metadata) *harvester {
	return &harvester{
		meta:    meta,
		title:   len(titleNames),
		byline:  len(bylineNames),
		excerpt: len(excerptNames),
	}
}

// wordInStr reports whether word appears as a whitespace-separated token of
// s, ignoring case.
func wordInStr(s, word string) bool {
	for _, token := range strings.Fields(s) {
		if strings.EqualFold(token, word) {
			return true
		}
	}
	return false
}

// betterIndex finds the rank of nameProp in the list if it outranks (or
// ties) the current best.
func betterIndex(names []string, best int, nameProp string) (int, bool) {
	for i, name := range names {
		if i <= best && wordInStr(nameProp, name) {
			return i, true
		}
	}
	return 0, false
}

// parseMetaAttrs extracts a metadata field from the content of a name or
// property meta attribute.
func (h *harvester) parseMetaAttrs(nameProp, content string) {
	if content == "" {
		return
	}
	nameProp = strings.ReplaceAll(nameProp, ".", ":")

	if i, ok := betterIndex(titleNames, h.title, nameProp); ok {
		h.title = i
		h.meta.Title = normalizeText(content)
		return
	}
	if i, ok := betterIndex(bylineNames, h.byline, nameProp); ok {
		h.byline = i
		h.meta.Byline = normalizeText(content)
		return
	}
	if i, ok := betterIndex(excerptNames, h.excerpt, nameProp); ok {
		h.excerpt = i
		h.meta.Excerpt = normalizeText(content)
		return
	}
	if wordInStr(nameProp, "og:site_name") {
		h.meta.SiteName = normalizeText(content)
	}
}

// harvestMetadata walks the document once, collecting meta tags and falling
// back to the title element when no meta-supplied title was found.
func harvestMetadata(root *html.Node, meta *Metadata) {
	h := newHarvester(meta)
	var titleNode *html.Node

	last := skipDescendants(root)
	for n := followingNode(root); n != last; n = followingNode(n) {
		if nodeHasTag(n, "title") {
			titleNode = n
			continue
		}
		if !nodeHasTag(n, "meta") {
			continue
		}
		content := attr(n, "content")
		if content == "" {
			continue
		}
		if property := attr(n, "property"); propertyRe.MatchString(property) {
			h.parseMetaAttrs(property, content)
			continue
		}
		if name := attr(n, "name"); nameRe.MatchString(name) {
			h.parseMetaAttrs(name, content)
		}
	}

	if meta.Title == "" && titleNode != nil {
		meta.Title = articleTitle(root, titleNode)
	}
}

func hasHeadingWithText(root *html.Node, text string) bool {
	return hasSuchDescendant(root, func(n *html.Node) bool {
		return nodeHasTag(n, "h1", "h2") && normalizedContent(n) == text
	})
}

// articleTitle derives the article title from the title element. A trailing
// site name is cut at the last separator surrounded by spaces; failing that,
// a title with a colon is truncated to the part after the last colon unless
// a heading carries the full string. Colon-derived titles of four words or
// fewer revert to the original.
func articleTitle(root *html.Node, titleNode *html.Node) string {
	title := normalizedContent(titleNode)
	original := title

	if sep := findLastSeparator(title); sep > 0 {
		// Drop the separator and the space before it.
		return title[:sep-1]
	}

	if colon := strings.LastIndex(title, ":"); colon >= 0 {
		// A heading containing this exact string means it's the full title.
		if hasHeadingWithText(root, title) {
			return title
		}
		title = title[colon+1:]
	}

	if wordCount(title, false) <= 4 {
		title = original
	}
	return title
}

// clean trims and unescapes all metadata string fields for
// presentation.
func (m *Metadata) clean() {
	m.Title = trimAndUnescape(m.Title)
	m.Byline = trimAndUnescape(m.Byline)
	m.Excerpt = trimAndUnescape(m.Excerpt)
	m.SiteName = trimAndUnescape(m.SiteName)
}

// HarvestMetadata extracts only the metadata record from a parsed document,
// without running the full extraction. The tree is not modified.
func HarvestMetadata(doc *html.Node) *Metadata {
	meta := &Metadata{}
	root := rootElement(doc)
	if root == nil {
		return meta
	}
	harvestMetadata(root, meta)
	meta.clean()
	return meta
}
