package cmd

import (
	"github.com/ezerfernandes/mdspan/internal/codespan"
	"github.com/ezerfernandes/mdspan/internal/mdast"
)

// walk collects the code nodes of root accepted by filter.
func walk(root mdast.Node, filter filterFunc) (codespan.Spans, error) {
	all, err := codespan.Collect(root)
	if err != nil {
		return nil, err
	}

	spans := make(codespan.Spans, 0, len(all))

	for _, span := range all {
		if filter(span.Lang, span.Meta) {
			spans = append(spans, span)
		}
	}

	return spans, nil
}
