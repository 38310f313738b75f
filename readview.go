// Package readview extracts the main readable article, and its metadata,
// from a parsed HTML document. It reproduces the multi-pass cleanup,
// paragraph scoring, candidate selection and retry heuristics of the
// browser reader view, operating purely on an in-memory tree: the engine
// never performs I/O.
package readview

import (
	"strings"

	"golang.org/x/net/html"
)

// Article is the result of a successful extraction.
type Article struct {
	// Node is the extracted content: a single element carrying
	// id="readability-page-1" and class="page".
	Node *html.Node
	// Metadata is the harvested metadata record, with the excerpt falling
	// back to the article's first paragraph.
	Metadata Metadata
}

// extractor holds the per-call state: configuration, the heuristic flag
// bitset mutated by the retry loop, the metadata record being filled in,
// the node annotations of the current working copy, and the saved attempts.
type extractor struct {
	opts        *options
	flags       int
	meta        *Metadata
	info        map[*html.Node]*nodeInfo
	bylineFound bool
	attempts    []attempt
}

func newExtractor(opts ...Option) *extractor {
	o := defaultOpts()
	for _, opt := range opts {
		opt(o)
	}

	e := &extractor{
		opts: o,
		meta: &Metadata{},
		info: make(map[*html.Node]*nodeInfo),
	}
	if o.stripUnlikely {
		e.flags |= flagStripUnlikely
	}
	if o.weightClasses {
		e.flags |= flagWeightClasses
	}
	if o.cleanConditionally {
		e.flags |= flagCleanConditionally
	}
	return e
}

func (e *extractor) flagActive(flag int) bool {
	return e.flags&flag != 0
}

func (e *extractor) removeFlag(flag int) {
	e.flags &^= flag
}

// Extract runs the full pipeline on a parsed document: metadata harvesting,
// document preparation, article grabbing (with retries), article cleanup
// and post-processing. The document is mutated heavily and consumed.
//
// It fails with ErrEmpty when the document has no root element, with
// ErrNoContent when even the fallback produced nothing, and with
// ErrMalformed when the body fallback is needed and the document has no
// body.
func Extract(doc *html.Node, opts ...Option) (*Article, error) {
	return newExtractor(opts...).extract(doc)
}

func (e *extractor) extract(doc *html.Node) (*Article, error) {
	root := rootElement(doc)
	if root == nil {
		return nil, ErrEmpty
	}

	// Do this early to prevent problems when traversing the tree.
	removeRootSiblings(root)
	e.setBaseURLFromDoc(root)

	removeDescendantsIf(root, isComment)
	unwrapNoscriptImages(root)
	removeDescendantsIf(root, isScriptOrNoscript)
	e.prepDocument(root)
	harvestMetadata(root, e.meta)

	article, err := e.grabArticle(doc)
	if err != nil {
		return nil, err
	}

	e.postProcess(article)

	// Without a harvested excerpt, the article's first paragraph serves as
	// the content preview.
	if e.meta.Excerpt == "" {
		if p := firstDescendantWithTag(article, "p"); p != nil {
			e.meta.Excerpt = normalizedContent(p)
		}
	}
	e.meta.clean()

	// Discard the wrapping div.
	content := article.FirstChild
	if content == nil {
		return nil, ErrNoContent
	}
	unlink(content)

	if len(e.opts.template) > 0 {
		docURL := anyOf(e.opts.documentURL, strings.TrimSpace(e.opts.baseURL))
		if err := attachMetadata(content, e.meta, e.opts.template, docURL); err != nil {
			return nil, err
		}
	}

	return &Article{Node: content, Metadata: *e.meta}, nil
}
