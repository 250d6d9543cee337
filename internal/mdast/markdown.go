package mdast

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteMarkdown renders the tree rooted at n as Markdown.
//
// Code nodes in block context, or alone in a paragraph, are written as
// fenced code blocks carrying their language tag and meta. Code nodes
// among other phrasing content are written as inline code spans.
func WriteMarkdown(w io.Writer, n Node) error {
	if err := Validate(n); err != nil {
		return err
	}

	out := strings.TrimRight(block(n), "\n") + "\n"

	_, err := io.WriteString(w, out)

	return err
}

func blocks(nodes []Node) string {
	parts := make([]string, 0, len(nodes))

	for _, n := range nodes {
		parts = append(parts, block(n))
	}

	return strings.Join(parts, "\n\n")
}

func block(n Node) string { //nolint:cyclop
	switch n := n.(type) {
	case *Root:
		return blocks(n.Children)
	case *Paragraph:
		if len(n.Children) == 1 {
			if code, ok := n.Children[0].(*Code); ok && !code.Inline {
				return fenced(code)
			}
		}

		return inlines(n.Children)
	case *Code:
		if n.Inline {
			return codeSpan(n.Value)
		}

		return fenced(n)
	case *Text:
		return n.Value
	case *Element:
		switch n.Kind {
		case TypeHeading:
			return strings.Repeat("#", IntAttr(n, "depth", 1)) + " " + inlines(n.Children)
		case TypeThematicBreak:
			return "---"
		case TypeBlockquote:
			return prefixLines(blocks(n.Children), "> ", "> ")
		case TypeList:
			return list(n)
		case TypeListItem:
			return blocks(n.Children)
		}

		if n.HasValue {
			return n.Value
		}

		if isPhrasing(n.Children) {
			return inlines(n.Children)
		}

		return blocks(n.Children)
	}

	return ""
}

func list(n *Element) string {
	ordered, _ := n.Attributes["ordered"].(bool)
	spread, _ := n.Attributes["spread"].(bool)
	start := IntAttr(n, "start", 1)

	items := make([]string, 0, len(n.Children))

	for i, item := range n.Children {
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", start+i)
		}

		items = append(items, prefixLines(block(item), marker, strings.Repeat(" ", len(marker))))
	}

	sep := "\n"
	if spread {
		sep = "\n\n"
	}

	return strings.Join(items, sep)
}

func inlines(nodes []Node) string {
	var buf strings.Builder

	for _, n := range nodes {
		buf.WriteString(inline(n))
	}

	return buf.String()
}

func inline(n Node) string {
	switch n := n.(type) {
	case *Text:
		return n.Value
	case *Code:
		return codeSpan(n.Value)
	case *Element:
		switch n.Kind {
		case TypeEmphasis:
			return "*" + inlines(n.Children) + "*"
		case TypeStrong:
			return "**" + inlines(n.Children) + "**"
		case TypeLink:
			return "[" + inlines(n.Children) + "](" + destination(n) + ")"
		case TypeImage:
			alt, _ := n.Attributes["alt"].(string)

			return "![" + alt + "](" + destination(n) + ")"
		case TypeBreak:
			return "\\\n"
		}

		if n.HasValue {
			return n.Value
		}

		return inlines(n.Children)
	case Parent:
		return inlines(n.Kids())
	}

	return ""
}

func destination(n *Element) string {
	url, _ := n.Attributes["url"].(string)

	if title, ok := n.Attributes["title"].(string); ok && title != "" {
		return url + " " + fmt.Sprintf("%q", title)
	}

	return url
}

func fenced(code *Code) string {
	fence := strings.Repeat("`", max(3, longestRun(code.Value, '`')+1))

	info := strings.TrimSpace(code.Lang + " " + code.Meta)

	value := code.Value
	if value != "" && !strings.HasSuffix(value, "\n") {
		value += "\n"
	}

	return fence + info + "\n" + value + fence
}

func codeSpan(value string) string {
	fence := strings.Repeat("`", longestRun(value, '`')+1)

	if value == "" || value[0] == '`' || value[len(value)-1] == '`' ||
		(value[0] == ' ' && value[len(value)-1] == ' ' && strings.TrimSpace(value) != "") {
		value = " " + value + " "
	}

	return fence + value + fence
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0

	for i := 0; i < len(s); i++ {
		if s[i] != c {
			run = 0

			continue
		}

		run++
		if run > longest {
			longest = run
		}
	}

	return longest
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")

	for i, line := range lines {
		prefix := rest
		if i == 0 {
			prefix = first
		}

		if line == "" && i > 0 {
			lines[i] = strings.TrimRight(prefix, " ")

			continue
		}

		lines[i] = prefix + line
	}

	return strings.Join(lines, "\n")
}

func isPhrasing(nodes []Node) bool {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			return true
		case *Code:
			return n.Inline
		case *Element:
			switch n.Kind {
			case TypeEmphasis, TypeStrong, TypeLink, TypeImage, TypeBreak:
				return true
			}
		}
	}

	return false
}

// IntAttr reads a numeric attribute of n that may come from goldmark (int)
// or from JSON (float64 or json.Number). It returns def when the attribute
// is missing or not a number.
func IntAttr(n Node, key string, def int) int {
	switch v := n.Attrs()[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}

	return def
}
