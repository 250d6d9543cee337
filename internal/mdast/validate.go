package mdast

import (
	"errors"
	"fmt"
)

// ErrMalformed is wrapped by every [ShapeError].
var ErrMalformed = errors.New("malformed document tree")

// ShapeError reports a node violating the tree shape invariant.
type ShapeError struct {
	// Path locates the node, e.g. "root.children[2].children[0]".
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformed, e.Path, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return ErrMalformed
}

// ChildPath returns the path of the i-th child of the node at path.
func ChildPath(path string, i int) string {
	return fmt.Sprintf("%s.children[%d]", path, i)
}

// CheckNode checks the shape of n alone, without its descendants.
func CheckNode(n Node, path string) error {
	if isNil(n) {
		return &ShapeError{Path: path, Reason: "nil node"}
	}

	if n, ok := n.(*Element); ok {
		if n.Kind == "" {
			return &ShapeError{Path: path, Reason: "missing type"}
		}

		if n.HasValue && len(n.Children) > 0 {
			return &ShapeError{Path: path, Reason: fmt.Sprintf("%q node has both a value and children", n.Kind)}
		}
	}

	return nil
}

// Validate checks that every node of the tree rooted at n satisfies the
// shape invariant: no nil nodes, no node with both a value and children.
func Validate(n Node) error {
	return validate(n, TypeRoot)
}

func validate(n Node, path string) error {
	if err := CheckNode(n, path); err != nil {
		return err
	}

	for i, child := range Children(n) {
		if err := validate(child, ChildPath(path, i)); err != nil {
			return err
		}
	}

	return nil
}

func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Root:
		return n == nil
	case *Paragraph:
		return n == nil
	case *Text:
		return n == nil
	case *Code:
		return n == nil
	case *Element:
		return n == nil
	}

	return false
}
