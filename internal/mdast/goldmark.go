package mdast

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Type tags of the passthrough kinds produced by [FromMarkdown].
const (
	TypeHeading       = "heading"
	TypeThematicBreak = "thematicBreak"
	TypeBlockquote    = "blockquote"
	TypeList          = "list"
	TypeListItem      = "listItem"
	TypeHTML          = "html"
	TypeEmphasis      = "emphasis"
	TypeStrong        = "strong"
	TypeLink          = "link"
	TypeImage         = "image"
	TypeBreak         = "break"
)

// ParseOption configures [FromMarkdown].
type ParseOption func(*parseConfig)

type parseConfig struct {
	delimiter string
}

// WithMarkerDelimiter keeps every run from one delim to the next as literal
// text, so emphasis, links and code spans are not recognized inside it.
func WithMarkerDelimiter(delim string) ParseOption {
	return func(c *parseConfig) {
		c.delimiter = delim
	}
}

// FromMarkdown parses a Markdown document with goldmark and converts the
// result into a document tree.
//
// Adjacent text segments of goldmark's tree are merged into one text node,
// joined by a newline at soft line breaks, so the literal text of a
// paragraph line stays in one piece.
func FromMarkdown(source []byte, opts ...ParseOption) (*Root, error) {
	var cfg parseConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	doc := newParser(cfg).Parse(text.NewReader(source))

	conv := newConverter(source)

	root := &Root{Children: conv.blocks(doc)}
	root.Position = &Position{Start: conv.point(0), End: conv.point(len(source))}

	if err := Validate(root); err != nil {
		return nil, fmt.Errorf("convert goldmark tree: %w", err)
	}

	return root, nil
}

func newParser(cfg parseConfig) parser.Parser {
	inlines := parser.DefaultInlineParsers()

	if cfg.delimiter != "" {
		inlines = append(inlines, util.Prioritized(&markerParser{delim: []byte(cfg.delimiter)}, markerPriority))
	}

	return parser.NewParser(
		parser.WithBlockParsers(parser.DefaultBlockParsers()...),
		parser.WithInlineParsers(inlines...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)
}

type converter struct {
	source     []byte
	lineStarts []int
}

func newConverter(source []byte) *converter {
	starts := []int{0}

	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &converter{source: source, lineStarts: starts}
}

func (c *converter) blocks(parent gmast.Node) []Node {
	children := make([]Node, 0, parent.ChildCount())

	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if node := c.block(child); node != nil {
			children = append(children, node)
		}
	}

	return children
}

func (c *converter) block(n gmast.Node) Node { //nolint:cyclop
	var node Node

	switch n := n.(type) {
	case *gmast.Paragraph:
		node = &Paragraph{Children: c.inlines(n)}
	case *gmast.TextBlock:
		// Tight list items hold their text in a TextBlock.
		node = &Paragraph{Children: c.inlines(n)}
	case *gmast.Heading:
		el := NewElement(TypeHeading, c.inlines(n)...)
		SetAttr(el, "depth", n.Level)
		node = el
	case *gmast.ThematicBreak:
		node = &Element{Kind: TypeThematicBreak}
	case *gmast.Blockquote:
		node = NewElement(TypeBlockquote, c.blocks(n)...)
	case *gmast.List:
		el := NewElement(TypeList, c.blocks(n)...)
		SetAttr(el, "ordered", n.IsOrdered())
		SetAttr(el, "spread", !n.IsTight)

		if n.IsOrdered() {
			SetAttr(el, "start", n.Start)
		}

		node = el
	case *gmast.ListItem:
		node = NewElement(TypeListItem, c.blocks(n)...)
	case *gmast.FencedCodeBlock:
		code := &Code{Value: c.lines(n.Lines())}

		if n.Info != nil {
			info := bytes.TrimSpace(n.Info.Segment.Value(c.source))
			code.Lang = string(n.Language(c.source))
			code.Meta = string(bytes.TrimSpace(bytes.TrimPrefix(info, []byte(code.Lang))))
		}

		node = code
	case *gmast.CodeBlock:
		node = &Code{Value: c.lines(n.Lines())}
	case *gmast.HTMLBlock:
		value := c.lines(n.Lines())
		if n.HasClosure() {
			value += string(n.ClosureLine.Value(c.source))
		}

		node = NewLiteral(TypeHTML, strings.TrimRight(value, "\n"))
	default:
		node = NewElement(n.Kind().String(), c.blocks(n)...)
	}

	if n.Type() == gmast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		SetPosition(node, c.position(lines.At(0).Start, lines.At(lines.Len()-1).Stop))
	}

	return node
}

func (c *converter) lines(lines *text.Segments) string {
	var buf bytes.Buffer

	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.source))
	}

	return buf.String()
}

func (c *converter) inlines(parent gmast.Node) []Node { //nolint:cyclop
	children := make([]Node, 0, parent.ChildCount())

	var (
		pending *Text
		lines   []Point
		stop    int
		// the pending value ends with a line break
		broken bool
		// some line of the pending value does not start where the previous
		// one ended in the source
		shifted bool
	)

	flush := func() {
		if pending == nil {
			return
		}

		pending.Position.End = c.point(stop)

		if shifted {
			pending.Lines = lines
		}

		children = append(children, pending)
		pending, lines, broken, shifted = nil, nil, false, false
	}

	add := func(value []byte, start, end int) {
		switch {
		case pending == nil:
			pending = &Text{}
			pending.Position = &Position{Start: c.point(start)}
			lines = []Point{c.point(start)}
		case broken:
			lines = append(lines, c.point(start))
			shifted = shifted || start != pending.Position.Start.Offset+len(pending.Value)
		}

		pending.Value += string(value)
		stop, broken = end, false
	}

	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *gmast.Text:
			add(n.Segment.Value(c.source), n.Segment.Start, n.Segment.Stop)

			switch {
			case n.HardLineBreak():
				flush()
				children = append(children, &Element{Kind: TypeBreak})
			case n.SoftLineBreak():
				pending.Value += "\n"
				broken = true
			}
		case *gmast.String:
			add(n.Value, stop, stop)
		case *markerSpan:
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				add(seg.Value(c.source), seg.Start, seg.Stop)
				broken = i < n.Segments.Len()-1
			}
		default:
			flush()
			children = append(children, c.inline(child))
		}
	}

	flush()

	return children
}

func (c *converter) inline(n gmast.Node) Node {
	switch n := n.(type) {
	case *gmast.CodeSpan:
		var buf bytes.Buffer

		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*gmast.Text); ok {
				buf.Write(t.Segment.Value(c.source))
			}
		}

		return &Code{Value: strings.ReplaceAll(buf.String(), "\n", " "), Inline: true}
	case *gmast.Emphasis:
		kind := TypeEmphasis
		if n.Level > 1 {
			kind = TypeStrong
		}

		return NewElement(kind, c.inlines(n)...)
	case *gmast.Link:
		el := NewElement(TypeLink, c.inlines(n)...)
		SetAttr(el, "url", string(n.Destination))
		setTitle(el, n.Title)

		return el
	case *gmast.Image:
		el := &Element{Kind: TypeImage}
		SetAttr(el, "url", string(n.Destination))
		SetAttr(el, "alt", TextContent(&Paragraph{Children: c.inlines(n)}))
		setTitle(el, n.Title)

		return el
	case *gmast.AutoLink:
		url := string(n.URL(c.source))
		el := NewElement(TypeLink, NewText(string(n.Label(c.source))))
		SetAttr(el, "url", url)

		return el
	case *gmast.RawHTML:
		var buf bytes.Buffer

		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(c.source))
		}

		return NewLiteral(TypeHTML, buf.String())
	}

	return NewElement(n.Kind().String(), c.inlines(n)...)
}

func setTitle(n Node, title []byte) {
	if len(title) > 0 {
		SetAttr(n, "title", string(title))
	}
}

func (c *converter) position(start, stop int) *Position {
	return &Position{Start: c.point(start), End: c.point(stop)}
}

// point converts a byte offset into a line and column.
func (c *converter) point(offset int) Point {
	idx := sort.Search(len(c.lineStarts), func(i int) bool { return c.lineStarts[i] > offset }) - 1

	return Point{Line: idx + 1, Column: offset - c.lineStarts[idx] + 1, Offset: offset}
}

// String renders a position as "line:column".
func (p Point) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}
