package highlight

import (
	"bytes"
	"html"
	"io"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/util"

	"github.com/ezerfernandes/mdspan/internal/mdast"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// Renderer writes document trees as HTML, highlighting code blocks.
//
// The tree is written back to Markdown and rendered by goldmark, so raw
// HTML and unsafe link destinations are dropped.
type Renderer struct {
	style string
	md    goldmark.Markdown
}

// NewRenderer returns a Renderer using the named chroma style. Unknown
// styles fall back to chroma's default style.
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
				highlighting.WithWrapperRenderer(wrapCode),
			),
		),
	)

	return &Renderer{style: style, md: md}
}

// WriteCSS writes the style sheet for the classes used in the output.
func (r *Renderer) WriteCSS(w io.Writer) error {
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, styles.Get(r.style))
}

// Render writes the tree rooted at n as an HTML fragment.
func (r *Renderer) Render(w io.Writer, n mdast.Node) error {
	var source bytes.Buffer

	if err := mdast.WriteMarkdown(&source, n); err != nil {
		return err
	}

	return r.md.Convert(source.Bytes(), w)
}

// wrapCode puts every code block in a div naming its language. Blocks
// chroma has no lexer for arrive unformatted and get a bare pre.
func wrapCode(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	lang, ok := c.Language()
	if !ok || len(lang) == 0 {
		lang = []byte(PlainText)
	}

	if !entering {
		if !c.Highlighted() {
			_, _ = w.WriteString("</code></pre>")
		}

		_, _ = w.WriteString("</div>\n")

		return
	}

	_, _ = w.WriteString(`<div class="highlight language-` + html.EscapeString(string(lang)) + `">`)

	if !c.Highlighted() {
		_, _ = w.WriteString("<pre><code>")
	}
}
