// Package mdast models a parsed Markdown document as a unist-style tree.
//
// The node kinds the rest of the module cares about are concrete types
// ([Root], [Paragraph], [Text], [Code]); every other kind a parser may
// produce is carried by [Element] and passed through untouched.
package mdast

import "strings"

// Type tags of the concrete node kinds.
const (
	TypeRoot       = "root"
	TypeParagraph  = "paragraph"
	TypeText       = "text"
	TypeCode       = "code"
	TypeInlineCode = "inlineCode"
)

// Attributes holds node fields that have no dedicated struct field.
// They are preserved as-is by every transformation.
type Attributes map[string]interface{}

// Point is a place in the source document. Line and Column are 1-based,
// Offset is 0-based. Zero values mean unknown.
type Point struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
	Offset int `json:"offset"`
}

// Position is the source range a node was parsed from.
type Position struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Node is a node of a document tree.
type Node interface {
	// Type returns the node's type tag.
	Type() string
	// Pos returns the source position, or nil if unknown.
	Pos() *Position
	// Attrs returns the extra attributes of the node, possibly nil.
	Attrs() Attributes

	node()
}

// Parent is implemented by nodes that may contain children.
type Parent interface {
	Node
	// Kids returns the child nodes. The slice must not be modified.
	Kids() []Node
	// WithKids returns a shallow copy of the node holding children.
	WithKids(children []Node) Parent
}

type base struct {
	Position   *Position
	Attributes Attributes
}

func (b *base) Pos() *Position    { return b.Position }
func (b *base) Attrs() Attributes { return b.Attributes }
func (*base) node()               {}

// Root is the top of a document tree.
type Root struct {
	base
	Children []Node
}

// Paragraph is a block of phrasing content.
type Paragraph struct {
	base
	Children []Node
}

// Text is literal phrasing content.
type Text struct {
	base
	Value string
	// Lines holds the source point of the first byte of each line of Value
	// when the lines are not contiguous in the source, as after a parser
	// dropped the indentation of continuation lines. Nil means contiguous.
	Lines []Point
}

// Code is a block of source code. It never has children and is not
// transformed any further once produced.
type Code struct {
	base
	Value string
	Lang  string
	Meta  string
	// Inline marks code that the parser produced as an inline code span.
	Inline bool
}

// Element carries every node kind without a dedicated type.
type Element struct {
	base
	Kind     string
	Children []Node
	Value    string
	// HasValue tells a literal node with an empty value apart from a
	// node without a value.
	HasValue bool
}

func (*Root) Type() string      { return TypeRoot }
func (*Paragraph) Type() string { return TypeParagraph }
func (*Text) Type() string      { return TypeText }
func (e *Element) Type() string { return e.Kind }

func (c *Code) Type() string {
	if c.Inline {
		return TypeInlineCode
	}

	return TypeCode
}

func (r *Root) Kids() []Node      { return r.Children }
func (p *Paragraph) Kids() []Node { return p.Children }
func (e *Element) Kids() []Node   { return e.Children }

func (r *Root) WithKids(children []Node) Parent {
	clone := *r
	clone.Children = children

	return &clone
}

func (p *Paragraph) WithKids(children []Node) Parent {
	clone := *p
	clone.Children = children

	return &clone
}

func (e *Element) WithKids(children []Node) Parent {
	clone := *e
	clone.Children = children

	return &clone
}

// NewRoot returns a root holding children.
func NewRoot(children ...Node) *Root {
	return &Root{Children: children}
}

// NewParagraph returns a paragraph holding children.
func NewParagraph(children ...Node) *Paragraph {
	return &Paragraph{Children: children}
}

// NewText returns a text node.
func NewText(value string) *Text {
	return &Text{Value: value}
}

// PointAt returns the source point of the byte at offset in Value, or the
// zero Point when the position of t is unknown.
func (t *Text) PointAt(offset int) Point {
	if t.Position == nil {
		return Point{}
	}

	prefix := t.Value[:offset]
	line := strings.Count(prefix, "\n")
	col := offset - strings.LastIndexByte(prefix, '\n') - 1
	start := t.Position.Start

	switch {
	case line < len(t.Lines):
		start = t.Lines[line]
	case line > 0:
		return Point{Line: start.Line + line, Column: col + 1, Offset: start.Offset + offset}
	}

	return Point{Line: start.Line, Column: start.Column + col, Offset: start.Offset + col}
}

// Slice returns a text node holding Value[start:end], carrying the
// attributes of t and the matching part of its position.
func (t *Text) Slice(start, end int) *Text {
	piece := &Text{Value: t.Value[start:end]}

	for key, value := range t.Attributes {
		SetAttr(piece, key, value)
	}

	if t.Position == nil {
		return piece
	}

	piece.Position = &Position{Start: t.PointAt(start), End: t.PointAt(end)}

	if t.Lines != nil && strings.Contains(piece.Value, "\n") {
		piece.Lines = []Point{piece.Position.Start}

		for i := start; i < end; i++ {
			if t.Value[i] == '\n' {
				piece.Lines = append(piece.Lines, t.PointAt(i+1))
			}
		}
	}

	return piece
}

// NewCode returns a code node tagged with lang.
func NewCode(value, lang string) *Code {
	return &Code{Value: value, Lang: lang}
}

// NewElement returns a passthrough node of the given kind.
func NewElement(kind string, children ...Node) *Element {
	return &Element{Kind: kind, Children: children}
}

// NewLiteral returns a passthrough node of the given kind carrying value.
func NewLiteral(kind, value string) *Element {
	return &Element{Kind: kind, Value: value, HasValue: true}
}

// SetPosition sets the source position of n.
func SetPosition(n Node, pos *Position) {
	if b := baseOf(n); b != nil {
		b.Position = pos
	}
}

// SetAttr sets an extra attribute of n.
func SetAttr(n Node, key string, value interface{}) {
	b := baseOf(n)
	if b == nil {
		return
	}

	if b.Attributes == nil {
		b.Attributes = make(Attributes)
	}

	b.Attributes[key] = value
}

func baseOf(n Node) *base {
	switch n := n.(type) {
	case *Root:
		return &n.base
	case *Paragraph:
		return &n.base
	case *Text:
		return &n.base
	case *Code:
		return &n.base
	case *Element:
		return &n.base
	}

	return nil
}

// Children returns the children of n, or nil for leaf nodes.
func Children(n Node) []Node {
	if p, ok := n.(Parent); ok {
		return p.Kids()
	}

	return nil
}
