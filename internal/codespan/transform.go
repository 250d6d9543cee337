// Package codespan promotes marker spans in the text of a document tree to
// code nodes.
//
// A marker span is a run of text bracketed by a delimiter, "$$" by default:
//
//	see $$print('hi')$$ below
//
// The body may start with a language tag and meta in braces:
//
//	$${go file=main.go}fmt.Println("hi")$$
package codespan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ezerfernandes/mdspan/internal/mdast"
)

var reTag = regexp.MustCompile(`^\{([A-Za-z][\w+#.-]*)((?:[ \t]+[^}\n]*)?)\}`)

// Transformer rewrites document trees. It holds no per-document state and
// is safe for concurrent use on independent trees.
type Transformer struct {
	opts    Options
	aliases map[string]string
}

// New returns a Transformer configured by opts.
func New(opts Options) (*Transformer, error) {
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultDelimiter
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}

	aliases := make(map[string]string, len(opts.Aliases))
	for from, to := range opts.Aliases {
		aliases[strings.ToLower(from)] = to
	}

	return &Transformer{opts: opts, aliases: aliases}, nil
}

// Warning is a non-fatal content problem found while transforming.
type Warning struct {
	Path    string
	Pos     mdast.Point
	Message string
}

func (w Warning) String() string {
	if w.Pos.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", w.Path, w.Pos.Line, w.Message)
	}

	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// Report summarizes a transformation.
type Report struct {
	// Spans is the number of code nodes created.
	Spans    int
	Warnings []Warning
}

// Transform returns root with every marker span found in its text nodes
// replaced by a code node.
//
// The input tree is not modified. Subtrees without marker spans are shared
// between input and output; parents of changed nodes are shallow copies.
// Code nodes are never descended into, so transforming the output again
// yields an equal tree. A root that is itself a text node has no parent to
// splice code nodes into and is returned unchanged.
//
// Unbalanced delimiters leave the text as it is and are reported as
// warnings. A tree violating the node shape invariant is rejected with an
// error wrapping [mdast.ErrMalformed].
func (t *Transformer) Transform(root mdast.Node) (mdast.Node, *Report, error) {
	report := new(Report)

	if err := mdast.CheckNode(root, mdast.TypeRoot); err != nil {
		return nil, nil, err
	}

	out, err := t.rewrite(root, mdast.TypeRoot, report)
	if err != nil {
		return nil, nil, err
	}

	return out, report, nil
}

func (t *Transformer) rewrite(node mdast.Node, path string, report *Report) (mdast.Node, error) {
	parent, ok := node.(mdast.Parent)
	if !ok {
		return node, nil
	}

	kids := parent.Kids()

	var changed []mdast.Node

	for i, child := range kids {
		childPath := mdast.ChildPath(path, i)

		if err := mdast.CheckNode(child, childPath); err != nil {
			return nil, err
		}

		var replacement []mdast.Node

		switch child := child.(type) {
		case *mdast.Code:
			// Terminal, kept as it is.
		case *mdast.Text:
			replacement = t.expand(child, childPath, report)
		default:
			out, err := t.rewrite(child, childPath, report)
			if err != nil {
				return nil, err
			}

			if out != child {
				replacement = []mdast.Node{out}
			}
		}

		if replacement != nil && changed == nil {
			changed = make([]mdast.Node, i, len(kids)+len(replacement))
			copy(changed, kids[:i])
		}

		switch {
		case replacement != nil:
			changed = append(changed, replacement...)
		case changed != nil:
			changed = append(changed, child)
		}
	}

	if changed == nil {
		return node, nil
	}

	return parent.WithKids(changed), nil
}

// expand splits a text node at its marker spans. It returns nil when the
// text has no complete span.
func (t *Transformer) expand(text *mdast.Text, path string, report *Report) []mdast.Node {
	segments, dangling := Split(text.Value, t.opts.Delimiter)

	if dangling >= 0 {
		report.Warnings = append(report.Warnings, Warning{
			Path:    path,
			Pos:     text.PointAt(dangling),
			Message: fmt.Sprintf("unbalanced %q delimiter, left as text", t.opts.Delimiter),
		})
	}

	if !HasSpan(segments) {
		return nil
	}

	nodes := make([]mdast.Node, 0, len(segments))

	for _, seg := range segments {
		if !seg.Span {
			nodes = append(nodes, text.Slice(seg.Start, seg.End))

			continue
		}

		code := t.code(seg.Text)
		report.Spans++

		if text.Pos() != nil {
			mdast.SetPosition(code, &mdast.Position{Start: text.PointAt(seg.Start), End: text.PointAt(seg.End)})
		}

		nodes = append(nodes, code)
	}

	return nodes
}

func (t *Transformer) code(body string) *mdast.Code {
	code := &mdast.Code{Value: body}

	if subs := reTag.FindStringSubmatch(body); subs != nil {
		code.Value = body[len(subs[0]):]
		code.Lang = t.alias(subs[1])
		code.Meta = strings.TrimSpace(subs[2])
	}

	if code.Lang == "" && t.opts.Detect != nil {
		code.Lang = t.opts.Detect(code.Value)
	}

	if code.Lang == "" {
		code.Lang = t.opts.DefaultLang
	}

	return code
}

func (t *Transformer) alias(lang string) string {
	if canonical, has := t.aliases[strings.ToLower(lang)]; has {
		return canonical
	}

	return lang
}
