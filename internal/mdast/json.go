package mdast

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	fieldType     = "type"
	fieldChildren = "children"
	fieldValue    = "value"
	fieldLang     = "lang"
	fieldMeta     = "meta"
	fieldPosition = "position"
)

type rawNode map[string]json.RawMessage

// Decode reads a tree in unist/mdast JSON form, as produced by remark and
// similar parsers. Fields without a dedicated struct field are kept in the
// node attributes.
func Decode(r io.Reader) (Node, error) {
	var raw rawNode

	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode document tree: %w", err)
	}

	return fromRaw(raw, TypeRoot)
}

func fromRaw(raw rawNode, path string) (Node, error) { //nolint:cyclop
	if raw == nil {
		return nil, &ShapeError{Path: path, Reason: "null node"}
	}

	var kind string

	if err := unmarshalField(raw, fieldType, &kind, path); err != nil {
		return nil, err
	}

	if kind == "" {
		return nil, &ShapeError{Path: path, Reason: "missing type"}
	}

	_, hasChildren := raw[fieldChildren]
	_, hasValue := raw[fieldValue]

	var children []Node

	if hasChildren {
		var err error

		if children, err = childrenFromRaw(raw[fieldChildren], path); err != nil {
			return nil, err
		}
	}

	var value string

	if err := unmarshalField(raw, fieldValue, &value, path); err != nil {
		return nil, err
	}

	var node Node

	switch kind {
	case TypeRoot, TypeParagraph:
		if hasValue {
			return nil, &ShapeError{Path: path, Reason: fmt.Sprintf("%q node has a value", kind)}
		}

		if kind == TypeRoot {
			node = &Root{Children: children}
		} else {
			node = &Paragraph{Children: children}
		}
	case TypeText:
		if hasChildren {
			return nil, &ShapeError{Path: path, Reason: "text node has children"}
		}

		node = &Text{Value: value}
	case TypeCode, TypeInlineCode:
		if hasChildren {
			return nil, &ShapeError{Path: path, Reason: "code node has children"}
		}

		code := &Code{Value: value, Inline: kind == TypeInlineCode}

		if err := unmarshalField(raw, fieldLang, &code.Lang, path); err != nil {
			return nil, err
		}

		if err := unmarshalField(raw, fieldMeta, &code.Meta, path); err != nil {
			return nil, err
		}

		node = code
	default:
		if hasChildren && hasValue {
			return nil, &ShapeError{Path: path, Reason: fmt.Sprintf("%q node has both a value and children", kind)}
		}

		node = &Element{Kind: kind, Children: children, Value: value, HasValue: hasValue}
	}

	b := baseOf(node)

	if pos, has := raw[fieldPosition]; has && string(pos) != "null" {
		b.Position = new(Position)

		if err := json.Unmarshal(pos, b.Position); err != nil {
			return nil, fmt.Errorf("%s: position: %w", path, err)
		}
	}

	for key, msg := range raw {
		if isKnownField(node, key) {
			continue
		}

		var value interface{}

		if err := json.Unmarshal(msg, &value); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, key, err)
		}

		if b.Attributes == nil {
			b.Attributes = make(Attributes)
		}

		b.Attributes[key] = value
	}

	return node, nil
}

func childrenFromRaw(msg json.RawMessage, path string) ([]Node, error) {
	var raws []rawNode

	if err := json.Unmarshal(msg, &raws); err != nil {
		return nil, fmt.Errorf("%s: children: %w", path, err)
	}

	children := make([]Node, 0, len(raws))

	for i, raw := range raws {
		child, err := fromRaw(raw, ChildPath(path, i))
		if err != nil {
			return nil, err
		}

		children = append(children, child)
	}

	return children, nil
}

func unmarshalField(raw rawNode, key string, dst *string, path string) error {
	msg, has := raw[key]
	if !has || string(msg) == "null" {
		return nil
	}

	if err := json.Unmarshal(msg, dst); err != nil {
		return fmt.Errorf("%s: %s: %w", path, key, err)
	}

	return nil
}

func isKnownField(n Node, key string) bool {
	switch key {
	case fieldType, fieldChildren, fieldValue, fieldPosition:
		return true
	case fieldLang, fieldMeta:
		_, isCode := n.(*Code)

		return isCode
	}

	return false
}

// Encode writes the tree rooted at n in unist/mdast JSON form.
func Encode(w io.Writer, n Node) error {
	obj, err := toRaw(n, TypeRoot)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(obj)
}

func toRaw(n Node, path string) (map[string]interface{}, error) {
	if err := CheckNode(n, path); err != nil {
		return nil, err
	}

	obj := make(map[string]interface{}, len(n.Attrs())+4) //nolint:gomnd

	for key, value := range n.Attrs() {
		obj[key] = value
	}

	obj[fieldType] = n.Type()

	if pos := n.Pos(); pos != nil {
		obj[fieldPosition] = pos
	}

	switch n := n.(type) {
	case *Text:
		obj[fieldValue] = n.Value
	case *Code:
		obj[fieldValue] = n.Value

		if !n.Inline {
			obj[fieldLang] = nullable(n.Lang)
			obj[fieldMeta] = nullable(n.Meta)
		}
	case *Element:
		if n.HasValue {
			obj[fieldValue] = n.Value

			return obj, nil
		}

		if n.Children == nil {
			return obj, nil
		}
	}

	if p, ok := n.(Parent); ok {
		children := make([]interface{}, 0, len(p.Kids()))

		for i, child := range p.Kids() {
			raw, err := toRaw(child, ChildPath(path, i))
			if err != nil {
				return nil, err
			}

			children = append(children, raw)
		}

		obj[fieldChildren] = children
	}

	return obj, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}

	return s
}
