package codespan

import (
	"fmt"

	"github.com/ezerfernandes/mdspan/internal/mdast"
)

// Collect returns every code node of the tree rooted at root, in document
// order, without modifying the tree.
func Collect(root mdast.Node) (Spans, error) {
	var spans Spans

	err := mdast.Walk(root, func(node mdast.Node, entering bool) (mdast.WalkStatus, error) {
		code, ok := node.(*mdast.Code)
		if !entering || !ok {
			return mdast.WalkContinue, nil
		}

		meta, err := ParseMeta(code.Meta)
		if err != nil {
			return mdast.WalkStop, err
		}

		span := &Span{Lang: code.Lang, Meta: meta, Code: code.Value, Inline: code.Inline}
		if pos := code.Pos(); pos != nil {
			span.Line = pos.Start.Line
		}

		spans = append(spans, span)

		return mdast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect code: %w", err)
	}

	return spans, nil
}
