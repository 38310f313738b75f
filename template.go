package readview

import (
	"fmt"

	"golang.org/x/net/html"
)

// attachMetadata interleaves the requested metadata fields into the
// article: fields listed before the "body" marker go in front of the
// content, the rest after it. Empty fields are skipped.
func attachMetadata(article *html.Node, meta *Metadata, fields []string, docURL string) error {
	pastBody := false
	first := article.FirstChild

	for _, field := range fields {
		var tag, content string
		switch field {
		case "title":
			tag, content = "h1", meta.Title
		case "body":
			pastBody = true
			continue
		case "byline":
			tag, content = "h3", meta.Byline
		case "excerpt":
			tag, content = "p", meta.Excerpt
		case "sitename":
			tag, content = "h2", meta.SiteName
		case "url":
			tag, content = "h2", docURL
		default:
			return fmt.Errorf("unrecognized field %q in article template", field)
		}

		if content == "" {
			continue
		}
		n := newElement(tag)
		n.AppendChild(newTextNode(content))
		if pastBody {
			article.AppendChild(n)
		} else {
			article.InsertBefore(n, first)
		}
	}
	return nil
}
