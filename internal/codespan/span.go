package codespan

// Span describes a code node found in a document tree.
type Span struct {
	Lang string
	Meta Meta
	Code string
	// Line is the 1-based source line of the code, 0 when unknown.
	Line   int
	Inline bool
}

type Spans []*Span
