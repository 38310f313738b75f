package readview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Comma-rich filler that clears the conditional-cleaning heuristics.
func filler(chars int) string {
	const sentence = "Paris, London, Rome, Berlin and Madrid mark the route of the journey. "
	return strings.Repeat(sentence, chars/len(sentence)+1)
}

func TestGrabMinimalParagraph(t *testing.T) {
	text := strings.TrimSpace(filler(300))
	doc := parseDoc(t, `<html><body><p>`+text+`</p></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)

	assert.Equal(t, text, strings.TrimSpace(normalizedContent(article.Node)))
	assert.Equal(t, text, article.Metadata.Excerpt)
}

func TestGrabBareTextFallback(t *testing.T) {
	text := strings.TrimSpace(filler(600))
	doc := parseDoc(t, `<html><body>`+text+`</body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, text, strings.TrimSpace(normalizedContent(article.Node)))
	assert.Equal(t, "readability-page-1", attr(article.Node, "id"))
	assert.Equal(t, "page", attr(article.Node, "class"))
}

func TestGrabRetriesWithWeakenedFlags(t *testing.T) {
	// The container class matches the unlikely pattern, so the first pass
	// strips it and comes up empty; clearing strip_unlikely rescues it.
	text := strings.TrimSpace(filler(600))
	doc := parseDoc(t, `<html><body><div class="pagination"><p>`+text+`</p></div></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, textNormalizedContentLength(article.Node), 500)
	assert.Contains(t, normalizedContent(article.Node), "Paris")
}

func TestGrabCapturesByline(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="main-content">`+
		`<p class="byline">By Jane Doe</p>`+
		`<p>`+filler(600)+`</p>`+
		`</div></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "By Jane Doe", article.Metadata.Byline)
	assert.NotContains(t, normalizedContent(article.Node), "Jane Doe")
}

func TestGrabMetaBylineOutranksDocumentByline(t *testing.T) {
	doc := parseDoc(t, `<html><head><meta name="author" content="Meta Author"></head>`+
		`<body><div class="main-content">`+
		`<p class="byline">By Somebody Else</p>`+
		`<p>`+filler(600)+`</p>`+
		`</div></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "Meta Author", article.Metadata.Byline)
}

func TestGrabTextDirection(t *testing.T) {
	doc := parseDoc(t, `<html dir="rtl"><body><p>`+filler(600)+`</p></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "rtl", article.Metadata.Dir)
}

func TestGrabRemovesHiddenNodes(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="main-content">`+
		`<p style="display: none">invisible text</p>`+
		`<p hidden>also invisible</p>`+
		`<p aria-hidden="true">screenreader hidden</p>`+
		`<p>`+filler(600)+`</p>`+
		`</div></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)
	content := normalizedContent(article.Node)
	assert.NotContains(t, content, "invisible")
	assert.NotContains(t, content, "screenreader")
}

func TestGrabStripsUnlikelyContainers(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="main-content">`+
		`<div class="sidebar">navigation junk</div>`+
		`<p>`+filler(600)+`</p>`+
		`</div></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)
	assert.NotContains(t, normalizedContent(article.Node), "navigation junk")
}

func TestGrabDivWithoutBlocksBecomesParagraph(t *testing.T) {
	// A long div of bare text must still be scored and extracted.
	doc := parseDoc(t, `<html><body><div id="wrap"><div id="inner">`+filler(600)+`</div></div></body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)
	ps := querySelectorAll(article.Node, "p")
	require.NotEmpty(t, ps)
	assert.Contains(t, normalizedContent(ps[0]), "Paris")
}

func TestGrabGathersContentSiblings(t *testing.T) {
	doc := parseDoc(t, `<html><body>`+
		`<div class="main-content"><p>`+filler(300)+`</p><p>`+filler(300)+`</p></div>`+
		`<p>A short trailing note worth keeping.</p>`+
		`<div>unrelated short junk</div>`+
		`</body></html>`)

	article, err := Extract(doc)
	require.NoError(t, err)

	content := normalizedContent(article.Node)
	assert.Contains(t, content, "trailing note worth keeping")
	assert.NotContains(t, content, "unrelated short junk")
}
