package codespan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezerfernandes/mdspan/internal/mdast"
)

func newTransformer(t *testing.T, opts Options) *Transformer {
	t.Helper()

	tr, err := New(opts)
	require.NoError(t, err)

	return tr
}

func transform(t *testing.T, tr *Transformer, root mdast.Node) (mdast.Node, *Report) {
	t.Helper()

	out, report, err := tr.Transform(root)
	require.NoError(t, err)

	return out, report
}

func TestTransform_SplitsParagraph(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})
	root := mdast.NewRoot(mdast.NewParagraph(mdast.NewText("see $$print('hi')$$ below")))

	out, report := transform(t, tr, root)

	expected := mdast.NewRoot(mdast.NewParagraph(
		mdast.NewText("see "),
		mdast.NewCode("print('hi')", ""),
		mdast.NewText(" below"),
	))

	assert.Equal(t, expected, out)
	assert.Equal(t, 1, report.Spans)
	assert.Empty(t, report.Warnings)
}

func TestTransform_CodeUnchanged(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})
	code := mdast.NewCode("x=1", "")

	out, report := transform(t, tr, code)

	assert.Same(t, code, out)
	assert.Zero(t, report.Spans)

	dollars := mdast.NewCode("a $$b$$ c", "sh")
	root := mdast.NewRoot(dollars)

	out, _ = transform(t, tr, root)

	assert.Same(t, root, out)
}

func TestTransform_Unbalanced(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})
	text := mdast.NewText("only $$one delimiter")
	root := mdast.NewRoot(mdast.NewParagraph(text))

	out, report := transform(t, tr, root)

	assert.Same(t, root, out)
	assert.Zero(t, report.Spans)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "root.children[0].children[0]", report.Warnings[0].Path)
	assert.Contains(t, report.Warnings[0].Message, "unbalanced")
}

func TestTransform_EmptySpan(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})
	root := mdast.NewRoot(mdast.NewParagraph(mdast.NewText("$$$$")))

	out, report := transform(t, tr, root)

	expected := mdast.NewRoot(mdast.NewParagraph(mdast.NewCode("", "")))

	assert.Equal(t, expected, out)
	assert.Equal(t, 1, report.Spans)
}

func TestTransform_NoTextNodes(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})

	image := mdast.NewElement(mdast.TypeImage)
	mdast.SetAttr(image, "url", "gopher.svg")

	root := mdast.NewRoot(mdast.NewParagraph(image), mdast.NewElement(mdast.TypeImage))

	out, report := transform(t, tr, root)

	assert.Same(t, root, out)
	assert.Zero(t, report.Spans)
}

func TestTransform_MultipleSpans(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})
	root := mdast.NewRoot(mdast.NewParagraph(mdast.NewText("$$a$$ and $$b$$$$c$$ tail $$")))

	out, report := transform(t, tr, root)

	expected := mdast.NewRoot(mdast.NewParagraph(
		mdast.NewCode("a", ""),
		mdast.NewText(" and "),
		mdast.NewCode("b", ""),
		mdast.NewCode("c", ""),
		mdast.NewText(" tail $$"),
	))

	assert.Equal(t, expected, out)
	assert.Equal(t, 3, report.Spans)
	assert.Len(t, report.Warnings, 1)
}

func TestTransform_NestedMarkersFirstPairWins(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{Delimiter: "@@"})
	root := mdast.NewRoot(mdast.NewParagraph(mdast.NewText("@@outer @@inner@@ rest@@")))

	out, _ := transform(t, tr, root)

	expected := mdast.NewRoot(mdast.NewParagraph(
		mdast.NewCode("outer ", ""),
		mdast.NewText("inner"),
		mdast.NewCode(" rest", ""),
	))

	assert.Equal(t, expected, out)
}

func TestTransform_SharesUnchangedSubtrees(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})

	untouched := mdast.NewElement(mdast.TypeBlockquote, mdast.NewParagraph(mdast.NewText("plain")))
	changed := mdast.NewParagraph(mdast.NewText("run $$ls$$"))
	root := mdast.NewRoot(untouched, changed)

	out, _ := transform(t, tr, root)

	outRoot, ok := out.(*mdast.Root)
	require.True(t, ok)
	require.Len(t, outRoot.Children, 2)

	assert.NotSame(t, root, outRoot)
	assert.Same(t, untouched, outRoot.Children[0])
	assert.NotSame(t, changed, outRoot.Children[1])

	// The input is left as it was.
	assert.Equal(t, "run $$ls$$", changed.Children[0].(*mdast.Text).Value)
}

func TestTransform_Idempotent(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{DefaultLang: "go"})

	root := mdast.NewRoot(
		mdast.NewParagraph(mdast.NewText("see $$print('hi')$$ below and $$dangling")),
		mdast.NewElement(mdast.TypeList,
			mdast.NewElement(mdast.TypeListItem, mdast.NewParagraph(mdast.NewText("$${sh}ls -la$$"))),
		),
		mdast.NewCode("$$x$$", ""),
	)

	once, _ := transform(t, tr, root)
	twice, report := transform(t, tr, once)

	assert.Equal(t, once, twice)
	assert.Same(t, once, twice)
	assert.Zero(t, report.Spans)
}

func TestTransform_ConservesText(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})

	root := mdast.NewRoot(
		mdast.NewElement(mdast.TypeHeading, mdast.NewText("Title $$x$$")),
		mdast.NewParagraph(mdast.NewText("a $$b$$ c $$d$$"), mdast.NewElement(mdast.TypeEmphasis, mdast.NewText("e $$f"))),
	)

	out, _ := transform(t, tr, root)

	stripped := strings.ReplaceAll(mdast.TextContent(root), "$$", "")
	// The dangling delimiter is kept as text.
	stripped = strings.Replace(stripped, "e f", "e $$f", 1)

	assert.Equal(t, stripped, mdast.TextContent(out))
}

func TestTransform_LanguageTag(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{Aliases: map[string]string{"Golang": "go"}})

	tests := []struct {
		name string
		text string
		lang string
		meta string
		code string
	}{
		{name: "plain", text: "$$x := 1$$", code: "x := 1"},
		{name: "tag", text: "$${python}print('hi')$$", lang: "python", code: "print('hi')"},
		{name: "tag with meta", text: "$${go file=main.go}fmt.Println()$$", lang: "go", meta: "file=main.go", code: "fmt.Println()"},
		{name: "alias", text: "$${GOLANG}x$$", lang: "go", code: "x"},
		{name: "json object is code", text: `$${a: 1}$$`, code: "{a: 1}"},
		{name: "tag only", text: "$${c++}$$", lang: "c++", code: ""},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, _ := transform(t, tr, mdast.NewParagraph(mdast.NewText(tt.text)))

			para, ok := out.(*mdast.Paragraph)
			require.True(t, ok)
			require.Len(t, para.Children, 1)

			code, ok := para.Children[0].(*mdast.Code)
			require.True(t, ok)

			assert.Equal(t, tt.lang, code.Lang)
			assert.Equal(t, tt.meta, code.Meta)
			assert.Equal(t, tt.code, code.Value)
		})
	}
}

func TestTransform_DetectAndDefault(t *testing.T) {
	t.Parallel()

	detect := func(code string) string {
		if strings.HasPrefix(code, "SELECT") {
			return "sql"
		}

		return ""
	}

	tr := newTransformer(t, Options{DefaultLang: "go", Detect: detect})
	root := mdast.NewParagraph(mdast.NewText("$$SELECT 1$$ $$x := 1$$ $${sh}SELECT$$"))

	out, _ := transform(t, tr, root)

	para := out.(*mdast.Paragraph)
	require.Len(t, para.Children, 5)

	assert.Equal(t, "sql", para.Children[0].(*mdast.Code).Lang)
	assert.Equal(t, "go", para.Children[2].(*mdast.Code).Lang)
	assert.Equal(t, "sh", para.Children[4].(*mdast.Code).Lang)
}

func TestTransform_Positions(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})

	text := mdast.NewText("first line\nsee $$x$$")
	mdast.SetPosition(text, &mdast.Position{
		Start: mdast.Point{Line: 3, Column: 1, Offset: 20},
		End:   mdast.Point{Line: 4, Column: 10, Offset: 39},
	})
	mdast.SetAttr(text, "data", "kept")

	out, _ := transform(t, tr, mdast.NewParagraph(text))

	para := out.(*mdast.Paragraph)
	require.Len(t, para.Children, 2)

	lead := para.Children[0].(*mdast.Text)
	assert.Equal(t, "kept", lead.Attrs()["data"])

	code := para.Children[1].(*mdast.Code)
	require.NotNil(t, code.Pos())
	assert.Equal(t, 4, code.Pos().Start.Line)
	assert.Equal(t, 7, code.Pos().Start.Column)
	assert.Equal(t, 37, code.Pos().Start.Offset)
}

func TestTransform_MarkdownSyntaxInSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		code string
	}{
		{src: "calc $$x = a*b*c$$ done\n", code: "x = a*b*c"},
		{src: "see $$arr[i](0)$$ ok\n", code: "arr[i](0)"},
		{src: "py $$__init__$$ ok\n", code: "__init__"},
		{src: "wrap $$**a**\nb_c_$$ end\n", code: "**a**\nb_c_"},
	}

	tr := newTransformer(t, Options{})

	for _, tt := range tests {
		tt := tt

		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			root, err := mdast.FromMarkdown([]byte(tt.src), mdast.WithMarkerDelimiter(DefaultDelimiter))
			require.NoError(t, err)

			out, report := transform(t, tr, root)
			assert.Equal(t, 1, report.Spans)
			assert.Empty(t, report.Warnings)

			spans, err := Collect(out)
			require.NoError(t, err)
			require.Len(t, spans, 1)
			assert.Equal(t, tt.code, spans[0].Code)
		})
	}
}

func TestTransform_PositionsAfterIndentedLine(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})

	root, err := mdast.FromMarkdown([]byte("a $$x\n    y$$ and $$z\n"), mdast.WithMarkerDelimiter(DefaultDelimiter))
	require.NoError(t, err)

	out, report := transform(t, tr, root)
	assert.Equal(t, 1, report.Spans)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, mdast.Point{Line: 2, Column: 13, Offset: 18}, report.Warnings[0].Pos)

	para := out.(*mdast.Root).Children[0].(*mdast.Paragraph)
	require.Len(t, para.Children, 3)

	code := para.Children[1].(*mdast.Code)
	assert.Equal(t, "x\ny", code.Value)
	assert.Equal(t, mdast.Point{Line: 1, Column: 5, Offset: 4}, code.Pos().Start)
	assert.Equal(t, mdast.Point{Line: 2, Column: 6, Offset: 11}, code.Pos().End)

	tail := para.Children[2].(*mdast.Text)
	assert.Equal(t, mdast.Point{Line: 2, Column: 8, Offset: 13}, tail.Pos().Start)
}

func TestTransform_PreservesAttributes(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})

	heading := mdast.NewElement(mdast.TypeHeading, mdast.NewText("Use $$db.Open$$"))
	mdast.SetAttr(heading, "depth", 2)

	out, _ := transform(t, tr, mdast.NewRoot(heading))

	got := out.(*mdast.Root).Children[0].(*mdast.Element)
	assert.Equal(t, mdast.TypeHeading, got.Kind)
	assert.Equal(t, 2, got.Attributes["depth"])
	assert.Len(t, got.Children, 2)
}

func TestTransform_MalformedTree(t *testing.T) {
	t.Parallel()

	tr := newTransformer(t, Options{})

	tests := []struct {
		name string
		root mdast.Node
		path string
	}{
		{
			name: "value and children",
			root: mdast.NewRoot(&mdast.Element{Kind: "custom", Value: "v", HasValue: true, Children: []mdast.Node{mdast.NewText("x")}}),
			path: "root.children[0]",
		},
		{
			name: "nil child",
			root: mdast.NewRoot(mdast.NewParagraph(mdast.NewText("a"), nil)),
			path: "root.children[0].children[1]",
		},
		{
			name: "nil root",
			root: nil,
			path: "root",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := tr.Transform(tt.root)
			require.ErrorIs(t, err, mdast.ErrMalformed)

			var shapeErr *mdast.ShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tt.path, shapeErr.Path)
		})
	}
}

func TestNew_InvalidDelimiter(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Delimiter: "$ $"})
	require.ErrorIs(t, err, ErrInvalidDelimiter)

	tr, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDelimiter, tr.opts.Delimiter)
}
