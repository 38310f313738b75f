package readview

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yosssi/gohtml"
	"golang.org/x/net/html"
)

func TestExtractDoubleBrParagraphs(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>A<br><br>B<br><br>C</div></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)

	want := `<div id="readability-page-1" class="page"><div><p>A</p><p>B</p><p>C</p></div></div>`
	assert.Equal(t, gohtml.Format(want), gohtml.Format(renderNode(article.Node)))

	ps := querySelectorAll(article.Node, "p")
	require.Len(t, ps, 3)
	for i, content := range []string{"A", "B", "C"} {
		assert.Equal(t, content, normalizedContent(ps[i]))
	}
}

func TestExtractChildlessRoot(t *testing.T) {
	doc := parseDoc(t, `<html></html>`)
	article, err := Extract(doc)
	assert.Nil(t, article)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestExtractEmptyDocument(t *testing.T) {
	doc := &html.Node{Type: html.DocumentNode}
	article, err := Extract(doc)
	assert.Nil(t, article)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestExtractDocumentWithoutBody(t *testing.T) {
	doc := &html.Node{Type: html.DocumentNode}
	root := newElement("html")
	doc.AppendChild(root)
	p := newElement("p")
	p.AppendChild(newTextNode("short"))
	root.AppendChild(p)

	article, err := Extract(doc)
	assert.Nil(t, article)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestExtractJavascriptLink(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="main-content"><p>`+
		filler(600)+`<a href="javascript:x()">click</a></p></div></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)

	rendered := renderNode(article.Node)
	assert.Contains(t, rendered, "click")
	assert.NotContains(t, rendered, "javascript:")
	assert.Empty(t, querySelectorAll(article.Node, "a"))
}

func TestExtractRelativeSrcset(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="main-content"><p>`+
		filler(600)+`</p><img srcset="b.jpg 1x, /c.jpg 2x"></div></body></html>`)

	article, err := Extract(doc, BaseURL("https://x.test/a/"))
	require.NoError(t, err)

	imgs := querySelectorAll(article.Node, "img")
	require.Len(t, imgs, 1)
	assert.Equal(t, "https://x.test/a/b.jpg 1x, https://x.test/c.jpg 2x", attr(imgs[0], "srcset"))
}

const fixtureBase = "https://fixture.test/articles/"

func extractFixture(t *testing.T) *Article {
	t.Helper()
	src := `<html><head>
		<title>Fixture | Site</title>
		<style>p { color: red }</style>
		<script src="app.js">var x = 1;</script>
	</head><body>
		<div class="article-content" id="main">
			<p>` + filler(600) + `</p>
			<p>` + filler(300) + `</p>
			<a href="relative/page.html">a relative link</a>
			<a href="#frag">a fragment link</a>
			<img src="photo.jpg" alt="photo">
			<iframe src="https://www.youtube.com/embed/xyz"></iframe>
			<iframe src="https://ads.example.test/frame"></iframe>
			<footer>footer junk</footer>
			<aside>related junk</aside>
			<input type="text">
			<button>go</button>
			<textarea>t</textarea>
			<select><option>o</option></select>
			<object data="movie.swf"></object>
			<embed src="thing.bin">
		</div>
	</body></html>`

	article, err := Extract(parseDoc(t, src), BaseURL(fixtureBase))
	require.NoError(t, err)
	return article
}

func TestExtractedArticleIsClean(t *testing.T) {
	article := extractFixture(t)
	sel := goquery.NewDocumentFromNode(article.Node)

	t.Run("junk elements are gone", func(t *testing.T) {
		for _, tag := range []string{
			"script", "style", "noscript", "input", "textarea", "select",
			"button", "aside", "link", "footer", "object", "embed", "h1",
		} {
			assert.Zero(t, sel.Find(tag).Length(), "stray <%s> in article", tag)
		}
	})

	t.Run("video embeds survive", func(t *testing.T) {
		iframes := sel.Find("iframe")
		require.Equal(t, 1, iframes.Length())
		src, _ := iframes.Attr("src")
		assert.Contains(t, src, "youtube.com")
	})

	t.Run("links are absolute or fragments", func(t *testing.T) {
		found := 0
		sel.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			found++
			href, _ := s.Attr("href")
			ok := strings.HasPrefix(href, "#") || absoluteRe.MatchString(href)
			assert.True(t, ok, "href %q neither absolute nor fragment", href)
		})
		assert.Equal(t, 2, found)
	})

	t.Run("images keep a source", func(t *testing.T) {
		imgs := sel.Find("img")
		require.Equal(t, 1, imgs.Length())
		imgs.Each(func(_ int, s *goquery.Selection) {
			_, hasSrc := s.Attr("src")
			_, hasSrcset := s.Attr("srcset")
			assert.True(t, hasSrc || hasSrcset)
		})
		src, _ := imgs.Attr("src")
		assert.Equal(t, fixtureBase+"photo.jpg", src)
	})

	t.Run("page marker on exactly one element", func(t *testing.T) {
		assert.Equal(t, "readability-page-1", attr(article.Node, "id"))
		assert.Equal(t, "page", attr(article.Node, "class"))
		dupes := countSuchDescs(article.Node, func(n *html.Node) bool {
			return attr(n, "id") == "readability-page-1"
		})
		assert.Zero(t, dupes)
	})

	t.Run("classes are stripped", func(t *testing.T) {
		assert.Zero(t, sel.Find(".article-content").Length())
	})

	t.Run("metadata title drops the site name", func(t *testing.T) {
		assert.Equal(t, "Fixture", article.Metadata.Title)
	})
}

func TestExtractWithTemplate(t *testing.T) {
	doc := parseDoc(t, `<html><head>
		<meta property="og:title" content="Titled">
		<meta property="og:site_name" content="Example">
	</head><body><div class="main-content"><p>`+filler(600)+`</p></div></body></html>`)

	article, err := Extract(doc,
		Template("title", "body", "sitename", "url"),
		DocumentURL("https://ex.test/article"),
	)
	require.NoError(t, err)

	first := firstElementChild(article.Node)
	require.NotNil(t, first)
	assert.True(t, nodeHasTag(first, "h1"))
	assert.Equal(t, "Titled", normalizedContent(first))

	h2s := querySelectorAll(article.Node, "h2")
	require.Len(t, h2s, 2)
	assert.Equal(t, "Example", normalizedContent(h2s[0]))
	assert.Equal(t, "https://ex.test/article", normalizedContent(h2s[1]))
}

func TestExtractTemplateUnknownField(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>`+filler(600)+`</p></body></html>`)
	_, err := Extract(doc, Template("title", "body", "bogus"))
	assert.ErrorContains(t, err, "bogus")
}

func TestExtractConsumesBaseHref(t *testing.T) {
	doc := parseDoc(t, `<html><head><base href="https://based.test/dir/"></head>`+
		`<body><div class="main-content"><p>`+filler(600)+
		`</p><a href="x.html">link</a></div></body></html>`)

	article, err := Extract(doc, BaseURL("https://ignored.test/"))
	require.NoError(t, err)

	links := querySelectorAll(article.Node, "a")
	require.Len(t, links, 1)
	assert.Equal(t, "https://based.test/dir/x.html", attr(links[0], "href"))
}
