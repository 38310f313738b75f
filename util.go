package readview

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

func querySelectorAll(n *html.Node, query string) []*html.Node {
	sel, err := cascadia.ParseGroup(query)
	if err != nil {
		return nil
	}
	return cascadia.QueryAll(n, sel)
}

func matches(n *html.Node, query string) bool {
	sel, err := cascadia.Parse(query)
	if err != nil {
		return false
	}
	return sel.Match(n)
}

// renderNode serializes a node back to HTML; an empty string on failure.
func renderNode(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

func anyOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
