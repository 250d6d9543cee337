package mdast

// WalkStatus tells [Walk] how to continue after visiting a node.
type WalkStatus int

const (
	// WalkContinue descends into children and continues with siblings.
	WalkContinue WalkStatus = iota
	// WalkSkipChildren continues with siblings without visiting children.
	WalkSkipChildren
	// WalkStop ends the walk.
	WalkStop
)

// Walker is called twice per node: once entering it, before its children,
// and once leaving it, after its children.
type Walker func(node Node, entering bool) (WalkStatus, error)

// Walk visits n and its descendants depth-first.
func Walk(n Node, walker Walker) error {
	_, err := walk(n, walker)

	return err
}

func walk(n Node, walker Walker) (WalkStatus, error) {
	status, err := walker(n, true)
	if err != nil || status == WalkStop {
		return WalkStop, err
	}

	if status != WalkSkipChildren {
		for _, child := range Children(n) {
			if st, err := walk(child, walker); err != nil || st == WalkStop {
				return WalkStop, err
			}
		}
	}

	status, err = walker(n, false)
	if err != nil || status == WalkStop {
		return WalkStop, err
	}

	return WalkContinue, nil
}

// TextContent returns the concatenated literal values of n and its
// descendants, in document order.
func TextContent(n Node) string {
	var buf []byte

	_ = Walk(n, func(node Node, entering bool) (WalkStatus, error) {
		if !entering {
			return WalkContinue, nil
		}

		switch node := node.(type) {
		case *Text:
			buf = append(buf, node.Value...)
		case *Code:
			buf = append(buf, node.Value...)
		case *Element:
			if node.HasValue {
				buf = append(buf, node.Value...)
			}
		}

		return WalkContinue, nil
	})

	return string(buf)
}

// Mapper returns the replacement for node, or node itself to keep it.
type Mapper func(node Node, path string) (Node, error)

// Map applies fn to every node of the tree rooted at n, top-down, and
// returns the resulting tree. Replaced nodes are not descended into.
// Unchanged subtrees are shared with the input; parents of replaced nodes
// are shallow copies, so the input tree is never modified.
func Map(n Node, fn Mapper) (Node, error) {
	return mapNode(n, TypeRoot, fn)
}

func mapNode(n Node, path string, fn Mapper) (Node, error) {
	if err := CheckNode(n, path); err != nil {
		return nil, err
	}

	out, err := fn(n, path)
	if err != nil || out != n {
		return out, err
	}

	parent, ok := n.(Parent)
	if !ok {
		return n, nil
	}

	kids := parent.Kids()

	var changed []Node

	for i, child := range kids {
		mapped, err := mapNode(child, ChildPath(path, i), fn)
		if err != nil {
			return nil, err
		}

		if mapped != child && changed == nil {
			changed = make([]Node, len(kids))
			copy(changed, kids)
		}

		if changed != nil {
			changed[i] = mapped
		}
	}

	if changed == nil {
		return n, nil
	}

	return parent.WithKids(changed), nil
}
