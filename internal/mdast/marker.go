package mdast

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// markerPriority runs the marker parser ahead of every default inline
// parser, so code inside a span is never read as emphasis, links or code.
const markerPriority = 50

var kindMarkerSpan = ast.NewNodeKind("MarkerSpan")

// markerSpan is a run of source from an opening to a closing delimiter,
// both included, kept as raw text. Segments holds one segment per line.
type markerSpan struct {
	ast.BaseInline
	Segments *text.Segments
}

func (n *markerSpan) Kind() ast.NodeKind { return kindMarkerSpan }

func (n *markerSpan) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// markerParser claims delimiter-bracketed runs before the rest of the
// inline syntax is parsed. Runs without a closing delimiter in the same
// block are left to the other parsers.
type markerParser struct {
	delim []byte
}

func (p *markerParser) Trigger() []byte {
	return p.delim[:1]
}

func (p *markerParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if !bytes.HasPrefix(line, p.delim) {
		return nil
	}

	node := &markerSpan{Segments: text.NewSegments()}
	from := len(p.delim)

	for {
		if idx := bytes.Index(line[from:], p.delim); idx >= 0 {
			stop := from + idx + len(p.delim)
			node.Segments.Append(segment.WithStop(segment.Start + stop))
			block.Advance(stop)

			return node
		}

		node.Segments.Append(segment)
		block.AdvanceLine()

		line, segment = block.PeekLine()
		if line == nil {
			return nil
		}

		from = 0
	}
}
