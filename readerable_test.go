package readview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func longLetters(n int) string {
	return strings.Repeat("lorem ipsum dolor sit amet ", n/27+1)[:n]
}

func TestReaderableSingleShortParagraph(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>`+longLetters(300)+`</p></body></html>`)
	// One 300-character paragraph scores sqrt(160), about 12.6: below 20.
	assert.False(t, Readerable(doc))
}

func TestReaderableSeveralParagraphs(t *testing.T) {
	p := `<p>` + longLetters(200) + `</p>`
	doc := parseDoc(t, `<html><body>`+strings.Repeat(p, 3)+`</body></html>`)
	assert.True(t, Readerable(doc))
}

func TestReaderableMonotoneInContent(t *testing.T) {
	p := `<p>` + longLetters(200) + `</p>`
	base := strings.Repeat(p, 3)

	assert.True(t, Readerable(parseDoc(t, `<html><body>`+base+`</body></html>`)))
	// Adding content to a readerable document keeps it readerable.
	assert.True(t, Readerable(parseDoc(t, `<html><body>`+base+p+`</body></html>`)))
	// Without any p or pre there is nothing to score.
	assert.False(t, Readerable(parseDoc(t, `<html><body><div>`+longLetters(400)+`</div></body></html>`)))
}

func TestReaderableDivWithBreaks(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>`+longLetters(300)+`<br><br>`+longLetters(300)+`</div></body></html>`)
	assert.True(t, Readerable(doc))
}

func TestReaderableSkipsHiddenAndUnlikely(t *testing.T) {
	p := `<p style="display:none">` + longLetters(200) + `</p>`
	doc := parseDoc(t, `<html><body>`+strings.Repeat(p, 5)+`</body></html>`)
	assert.False(t, Readerable(doc))

	p = `<p class="sidebar">` + longLetters(200) + `</p>`
	doc = parseDoc(t, `<html><body>`+strings.Repeat(p, 5)+`</body></html>`)
	assert.False(t, Readerable(doc))

	// The candidate pattern rescues an otherwise unlikely class.
	p = `<p class="sidebar article">` + longLetters(200) + `</p>`
	doc = parseDoc(t, `<html><body>`+strings.Repeat(p, 5)+`</body></html>`)
	assert.True(t, Readerable(doc))
}

func TestReaderableSkipsParagraphsInLists(t *testing.T) {
	p := `<li><p>` + longLetters(200) + `</p></li>`
	doc := parseDoc(t, `<html><body><ul>`+strings.Repeat(p, 5)+`</ul></body></html>`)
	assert.False(t, Readerable(doc))
}

func TestReaderableOptions(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>`+longLetters(300)+`</p></body></html>`)
	assert.True(t, Readerable(doc, MinScore(10)))
	assert.False(t, Readerable(doc, MinContentLength(400)))
}
