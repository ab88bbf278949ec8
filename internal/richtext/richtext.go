// Package richtext reads the HTML produced by the note editor.
package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms end a run of text; a space is inserted so words from adjacent
// paragraphs do not merge.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Div: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.Blockquote: true,
	atom.Pre: true, atom.Ol: true, atom.Ul: true,
}

// mediaAtoms carry content without any text.
var mediaAtoms = map[atom.Atom]bool{
	atom.Img: true, atom.Iframe: true, atom.Video: true,
}

// Result is what a single pass over a fragment yields.
type Result struct {
	Text     string // visible text, whitespace collapsed
	HasMedia bool
}

// Parse tokenizes an HTML fragment. Malformed markup never fails; the
// tokenizer recovers the same way a browser would.
func Parse(fragment string) Result {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	var res Result
	skip := 0 // depth inside <script>/<style>

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			res.Text = strings.Join(strings.Fields(b.String()), " ")
			return res
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				if tt == html.StartTagToken {
					skip++
				}
			case mediaAtoms[a]:
				res.HasMedia = true
			case blockAtoms[a]:
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			} else if blockAtoms[a] {
				b.WriteByte(' ')
			}
		}
	}
}

// PlainText returns the visible text of fragment.
func PlainText(fragment string) string {
	return Parse(fragment).Text
}

// IsBlank reports whether fragment shows nothing: no text and no media.
// An emptied editor yields "<p><br></p>", which is blank.
func IsBlank(fragment string) bool {
	r := Parse(fragment)
	return r.Text == "" && !r.HasMedia
}

// Snippet returns at most n runes of the plain text, with "..." appended
// when cut.
func Snippet(fragment string, n int) string {
	text := PlainText(fragment)
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
